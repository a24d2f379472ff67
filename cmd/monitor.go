package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndoctl-project/ndoctl/internal/netflow"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"netflow-monitor"},
	Short:   "Manage NetFlow monitors of a tenant policy template",
}

var monitorEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create or update a NetFlow monitor",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireNameOrUUID(cmd, args); err != nil {
			return err
		}
		if exporters, _ := cmd.Flags().GetStringArray("exporter"); len(exporters) == 0 {
			return fmt.Errorf("at least one --exporter is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, client, err := newService()
		if err != nil {
			return err
		}

		spec := netflow.MonitorSpec{
			Name:        mustString(cmd, "name"),
			UUID:        mustString(cmd, "uuid"),
			Description: changedString(cmd, "description"),
		}
		if uuid := mustString(cmd, "record-uuid"); uuid != "" {
			spec.Record = &netflow.ObjectRef{UUID: uuid}
		} else if rec := mustString(cmd, "record"); rec != "" {
			ref := parseObjectRef(rec)
			spec.Record = &ref
		}
		exporters, _ := cmd.Flags().GetStringArray("exporter")
		for _, e := range exporters {
			spec.Exporters = append(spec.Exporters, parseMonitorRef(e))
		}

		res, err := svc.EnsureMonitor(cmd.Context(), templateRef(), spec)
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

var monitorDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete a NetFlow monitor",
	PreRunE: requireNameOrUUID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, client, err := newService()
		if err != nil {
			return err
		}
		res, err := svc.DeleteMonitor(cmd.Context(), templateRef(),
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

var monitorGetCmd = &cobra.Command{
	Use:     "get",
	Short:   "Show one or all NetFlow monitors with resolved references",
	PreRunE: requireTemplate,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		objs, err := svc.QueryMonitors(cmd.Context(), templateRef(),
			mustString(cmd, "uuid"), mustString(cmd, "name"), mustString(cmd, "filter"))
		if err != nil {
			return err
		}
		printObjects(cmd, objs)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{monitorEnsureCmd, monitorDeleteCmd, monitorGetCmd} {
		c.Flags().String("name", "", "Name of the monitor")
		c.Flags().String("uuid", "", "UUID of the monitor")
	}
	monitorEnsureCmd.Flags().String("description", "", "Description of the monitor")
	monitorEnsureCmd.Flags().String("record", "",
		"NetFlow record reference as name[@template]; unset clears the reference on update")
	monitorEnsureCmd.Flags().String("record-uuid", "",
		"NetFlow record reference by UUID (alternative to --record)")
	monitorEnsureCmd.Flags().StringArray("exporter", nil,
		"NetFlow exporter reference as uuid:<uuid> or name[@template]; repeatable, replaces the list")

	monitorGetCmd.Flags().String("filter", "", "Filter expression")

	monitorCmd.AddCommand(monitorEnsureCmd, monitorDeleteCmd, monitorGetCmd)
	rootCmd.AddCommand(monitorCmd)
}

// parseObjectRef parses "name" or "name@template".
func parseObjectRef(s string) netflow.ObjectRef {
	name, tpl, found := strings.Cut(s, "@")
	ref := netflow.ObjectRef{Name: name}
	if found {
		ref.Template = netflow.TemplateRef{Name: tpl}
	}
	return ref
}

// parseMonitorRef additionally accepts the "uuid:" prefix for direct UUID
// references.
func parseMonitorRef(s string) netflow.ObjectRef {
	if rest, ok := strings.CutPrefix(s, "uuid:"); ok {
		return netflow.ObjectRef{UUID: rest}
	}
	return parseObjectRef(s)
}
