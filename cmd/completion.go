package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndoctl-project/ndoctl/internal/ndo"
)

var (
	cachedTemplates []string
	templatesOnce   sync.Once
)

var completionCmd = &cobra.Command{
	Use:       "completion [SHELL]",
	Short:     "Prints shell completion scripts",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			_ = cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			_ = cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	_ = rootCmd.RegisterFlagCompletionFunc("template", templateCompletion)
}

func loadTemplateNames() ([]string, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	summaries, err := client.TemplateSummaries(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range summaries {
		if s.TemplateType == ndo.TenantPolicyType {
			names = append(names, s.TemplateName)
		}
	}
	return names, nil
}

func templateCompletion(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	templatesOnce.Do(func() {
		if names, err := loadTemplateNames(); err == nil {
			cachedTemplates = names
		}
	})
	return cachedTemplates, cobra.ShellCompDirectiveNoFileComp
}
