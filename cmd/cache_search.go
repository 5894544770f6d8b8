package cmd

import (
	"fmt"
	"strings"

	"github.com/kirksw/ghorg/internal/cache"
	"github.com/spf13/cobra"
)

var searchCacheCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search cached repositories",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchCache,
}

func init() {
	cacheCmd.AddCommand(searchCacheCmd)
}

func runSearchCache(cmd *cobra.Command, args []string) error {
	c := cache.New()
	out := cmd.OutOrStdout()

	pattern := args[0]
	repos, err := c.Search(pattern)
	if err != nil {
		return fmt.Errorf("failed to search cache: %w", err)
	}

	if len(repos) == 0 {
		fmt.Fprintf(out, "No repositories found matching: %s\n", pattern)
		return nil
	}

	fmt.Fprintf(out, "Found %d repositories matching '%s':\n\n", len(repos), pattern)

	for _, repo := range repos {
		fmt.Fprintf(out, "  %s\n", repo.FullName())
		if desc := repo.Description(); desc != "" {
			fmt.Fprintf(out, "    %s\n", strings.TrimSpace(desc))
		}
		license := repo.LicenseKey()
		if license == "" {
			license = "none"
		}
		fmt.Fprintf(out, "    License: %s\n\n", license)
	}

	return nil
}
