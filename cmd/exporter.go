package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ndoctl-project/ndoctl/internal/netflow"
)

var exporterCmd = &cobra.Command{
	Use:     "exporter",
	Aliases: []string{"netflow-exporter"},
	Short:   "Manage NetFlow exporters of a tenant policy template",
}

var exporterEnsureCmd = &cobra.Command{
	Use:     "ensure",
	Short:   "Create or update a NetFlow exporter",
	PreRunE: requireNameOrUUID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, client, err := newService()
		if err != nil {
			return err
		}

		spec := netflow.ExporterSpec{
			Name:            mustString(cmd, "name"),
			UUID:            mustString(cmd, "uuid"),
			Description:     changedString(cmd, "description"),
			DestinationIP:   changedString(cmd, "dest-ip"),
			DestinationPort: changedInt(cmd, "dest-port"),
			SourceIPType:    changedString(cmd, "source-ip-type"),
			SourceIP:        changedString(cmd, "source-ip"),
		}
		if cmd.Flags().Changed("qos-dscp") || cmd.Flags().Changed("qos-priority") {
			spec.QoS = &netflow.QoSSpec{
				DSCP:     changedString(cmd, "qos-dscp"),
				Priority: changedInt(cmd, "qos-priority"),
			}
		}
		spec.ClearQoS, _ = cmd.Flags().GetBool("clear-qos")

		res, err := svc.EnsureExporter(cmd.Context(), templateRef(), spec)
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

var exporterDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete a NetFlow exporter",
	PreRunE: requireNameOrUUID,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, client, err := newService()
		if err != nil {
			return err
		}
		res, err := svc.DeleteExporter(cmd.Context(), templateRef(),
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

var exporterGetCmd = &cobra.Command{
	Use:     "get",
	Short:   "Show one or all NetFlow exporters",
	PreRunE: requireTemplate,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		objs, err := svc.QueryExporters(cmd.Context(), templateRef(),
			mustString(cmd, "uuid"), mustString(cmd, "name"), mustString(cmd, "filter"))
		if err != nil {
			return err
		}
		printObjects(cmd, objs)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{exporterEnsureCmd, exporterDeleteCmd, exporterGetCmd} {
		c.Flags().String("name", "", "Name of the exporter")
		c.Flags().String("uuid", "", "UUID of the exporter")
	}
	exporterEnsureCmd.Flags().String("description", "", "Description of the exporter")
	exporterEnsureCmd.Flags().String("dest-ip", "", "Collector destination IP")
	exporterEnsureCmd.Flags().Int("dest-port", 0, "Collector destination port")
	exporterEnsureCmd.Flags().String("source-ip-type", "", "Source IP type (e.g. tep, custom)")
	exporterEnsureCmd.Flags().String("source-ip", "", "Custom source IP")
	exporterEnsureCmd.Flags().String("qos-dscp", "", "DSCP marking for exported flows")
	exporterEnsureCmd.Flags().Int("qos-priority", 0, "QoS priority for exported flows")
	exporterEnsureCmd.Flags().Bool("clear-qos", false, "Remove the QoS sub-object")

	exporterGetCmd.Flags().String("filter", "", `Filter expression, e.g. 'Name("exp1") || Has("qosPolicy")'`)

	exporterCmd.AddCommand(exporterEnsureCmd, exporterDeleteCmd, exporterGetCmd)
	rootCmd.AddCommand(exporterCmd)
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
