package cmd

import (
	"fmt"

	"github.com/kirksw/ghorg/internal/cache"
	"github.com/kirksw/ghorg/internal/ui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse <org>",
	Short: "Pick a repository interactively and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newOrgClient(cfg, args[0])
	if err != nil {
		return err
	}

	c := cache.New()
	c.SetTTL(cfg.GetCacheTTL())

	repos, err := loadRepos(cmd.Context(), c, client)
	if err != nil {
		return err
	}

	if len(repos) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No repositories found for %s\n", client.Name())
		return nil
	}

	selected, err := ui.RunRepoPicker(client.Name(), repos)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}

	url, _ := selected["html_url"].(string)
	if url == "" {
		url = selected.FullName()
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
