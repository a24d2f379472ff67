package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndoctl-project/ndoctl/internal/netflow"
)

var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"netflow-record"},
	Short:   "Manage NetFlow records of a tenant policy template",
}

var recordEnsureCmd = &cobra.Command{
	Use:     "ensure",
	Short:   "Create or update a NetFlow record",
	PreRunE: requireNameOrUUID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, client, err := newService()
		if err != nil {
			return err
		}

		spec := netflow.RecordSpec{
			Name:            mustString(cmd, "name"),
			UUID:            mustString(cmd, "uuid"),
			Description:     changedString(cmd, "description"),
			MatchParameters: changedStringSlice(cmd, "match"),
		}

		res, err := svc.EnsureRecord(cmd.Context(), templateRef(), spec)
		if err != nil {
			return err
		}
		if res.Changed && !flagDryRun {
			recordRevision(cmd.Context(), client, templateRef())
		}
		printResult(cmd, res)
		return nil
	},
}

var recordDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete a NetFlow record",
	PreRunE: requireNameOrUUID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, client, err := newService()
		if err != nil {
			return err
		}
		res, err := svc.DeleteRecord(cmd.Context(), templateRef(),
			mustString(cmd, "uuid"), mustString(cmd, "name"))
		if err != nil {
			return err
		}
		if res.Changed && !flagDryRun {
			recordRevision(cmd.Context(), client, templateRef())
		}
		printResult(cmd, res)
		return nil
	},
}

var recordGetCmd = &cobra.Command{
	Use:     "get",
	Short:   "Show one or all NetFlow records",
	PreRunE: requireTemplate,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		objs, err := svc.QueryRecords(cmd.Context(), templateRef(),
			mustString(cmd, "uuid"), mustString(cmd, "name"), mustString(cmd, "filter"))
		if err != nil {
			return err
		}
		printObjects(cmd, objs)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{recordEnsureCmd, recordDeleteCmd, recordGetCmd} {
		c.Flags().String("name", "", "Name of the record")
		c.Flags().String("uuid", "", "UUID of the record")
	}
	recordEnsureCmd.Flags().String("description", "", "Description of the record")
	recordEnsureCmd.Flags().StringSlice("match", nil,
		"Match parameters ("+strings.Join(netflow.MatchParameterNames(), ", ")+")")
	_ = recordEnsureCmd.RegisterFlagCompletionFunc("match",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return netflow.MatchParameterNames(), cobra.ShellCompDirectiveNoFileComp
		})

	recordGetCmd.Flags().String("filter", "", "Filter expression")

	recordCmd.AddCommand(recordEnsureCmd, recordDeleteCmd, recordGetCmd)
	rootCmd.AddCommand(recordCmd)
}
