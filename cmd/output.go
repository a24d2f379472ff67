package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/ndoctl-project/ndoctl/internal/netflow"
	"github.com/ndoctl-project/ndoctl/pkg/planview"
)

// printResult renders the outcome of a mutating command: the applied (or,
// with --dry-run, proposed) operations and the field-level change view.
func printResult(cmd *cobra.Command, res *netflow.Result) {
	out := cmd.OutOrStdout()

	if !res.Changed {
		fmt.Fprintln(out, "No changes.")
		return
	}
	if flagDryRun {
		fmt.Fprintln(out, "Dry run; the following operations were NOT applied:")
	}
	fmt.Fprint(out, planview.RenderOps(res.Ops, theme()))

	if res.Proposed != nil {
		fmt.Fprintln(out)
		fmt.Fprint(out, planview.Render(res.Previous, res.Proposed, theme()))
	}
	if flagVerbose {
		spew.Fdump(out, res)
	}
}

// printObjects renders query output, one document per object.
func printObjects(cmd *cobra.Command, objs []map[string]any) {
	out := cmd.OutOrStdout()

	if len(objs) == 0 {
		fmt.Fprintln(out, "No objects found.")
		return
	}
	for i, obj := range objs {
		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		fmt.Fprint(out, planview.Render(obj, obj, theme()))
	}
	if flagVerbose {
		spew.Fdump(out, objs)
	}
}
