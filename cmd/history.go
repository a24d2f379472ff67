package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ndoctl-project/ndoctl/internal/history"
	"github.com/ndoctl-project/ndoctl/internal/ndo"
	"github.com/ndoctl-project/ndoctl/internal/store"
	"github.com/ndoctl-project/ndoctl/pkg/planview"
)

var historyCmd = &cobra.Command{
	Use:               "history",
	Short:             "Inspect the local revision log of a template",
	PersistentPreRunE: requireTemplate,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recorded revisions of a template",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := resolveTemplateID(cmd.Context())
		if err != nil {
			return err
		}
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = hist.Close() }()

		entries, err := hist.List(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No revisions recorded.")
			return nil
		}
		for _, e := range entries {
			kind := "patch"
			detail := fmt.Sprintf("%d ops", e.OpCount)
			if e.Snapshot {
				kind = "snapshot"
				detail = "full document"
			}
			fmt.Fprintf(out, "%6d  %-8s  %-14s  %s\n",
				uint64(e.ID), kind, detail, humanize.Time(e.TakenAt))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the template document at a revision",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := resolveTemplateID(cmd.Context())
		if err != nil {
			return err
		}
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = hist.Close() }()

		rev, err := revisionArg(cmd, hist, id, "rev")
		if err != nil {
			return err
		}
		doc, err := hist.Restore(cmd.Context(), id, rev)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), planview.Render(doc, doc, theme()))
		return nil
	},
}

var historyDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the changes between two revisions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := resolveTemplateID(cmd.Context())
		if err != nil {
			return err
		}
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = hist.Close() }()

		from, err := revisionArg(cmd, hist, id, "from")
		if err != nil {
			return err
		}
		to, err := revisionArg(cmd, hist, id, "to")
		if err != nil {
			return err
		}

		ops, err := hist.Diff(cmd.Context(), id, from, to)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(ops) == 0 {
			fmt.Fprintln(out, "No changes between revisions.")
			return nil
		}
		fmt.Fprint(out, planview.RenderOps(ops, theme()))

		a, err := hist.Restore(cmd.Context(), id, from)
		if err != nil {
			return err
		}
		b, err := hist.Restore(cmd.Context(), id, to)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, planview.Render(a, b, theme()))
		return nil
	},
}

func init() {
	historyShowCmd.Flags().Uint64("rev", 0, "Revision to show (default: latest)")
	historyDiffCmd.Flags().Uint64("from", 0, "Base revision (default: latest-1)")
	historyDiffCmd.Flags().Uint64("to", 0, "Target revision (default: latest)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDiffCmd)
	rootCmd.AddCommand(historyCmd)
}

// resolveTemplateID prefers the explicit --template-id so the revision log
// stays usable without orchestrator connectivity.
func resolveTemplateID(ctx context.Context) (string, error) {
	if flagTemplateID != "" {
		return flagTemplateID, nil
	}
	client, err := newClient()
	if err != nil {
		return "", fmt.Errorf("resolving --template requires connectivity (%w); use --template-id instead", err)
	}
	return client.FindTemplateID(ctx, flagTemplate, ndo.TenantPolicyType)
}

// revisionArg reads a revision flag, falling back to the latest revision
// (or its predecessor for --from).
func revisionArg(cmd *cobra.Command, hist *history.Service, templateID, name string) (store.RevisionID, error) {
	v, _ := cmd.Flags().GetUint64(name)
	if v != 0 {
		return store.RevisionID(v), nil
	}
	latest, err := hist.Latest(cmd.Context(), templateID)
	if err != nil {
		return 0, err
	}
	if name == "from" && latest > 1 {
		return latest - 1, nil
	}
	return latest, nil
}
