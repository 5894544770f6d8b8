package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/kirksw/ghorg/internal/cache"
	"github.com/kirksw/ghorg/internal/github"
	"github.com/spf13/cobra"
)

var (
	reposLicense string
	reposNoCache bool
)

var reposCmd = &cobra.Command{
	Use:   "repos <org>",
	Short: "List public repositories of an organization",
	Example: `  ghorg repos google
  ghorg repos google --license apache-2.0
  ghorg repos google --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runRepos,
}

func init() {
	rootCmd.AddCommand(reposCmd)

	reposCmd.Flags().StringVarP(&reposLicense, "license", "l", "", "only list repos with this license key (e.g. apache-2.0)")
	reposCmd.Flags().BoolVar(&reposNoCache, "no-cache", false, "always fetch from the API and skip the local cache")
}

func runRepos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newOrgClient(cfg, args[0])
	if err != nil {
		return err
	}

	var c *cache.OrgCache
	if !reposNoCache {
		c = cache.New()
		c.SetTTL(cfg.GetCacheTTL())
	}

	repos, err := loadRepos(cmd.Context(), c, client)
	if err != nil {
		return err
	}

	names := github.FilterRepoNames(repos, reposLicense)

	out := cmd.OutOrStdout()
	heading := fmt.Sprintf("%s: %d repositories", client.Name(), len(names))
	if reposLicense != "" {
		heading += fmt.Sprintf(" (license %s)", reposLicense)
	}
	fmt.Fprintln(out, headingStyle.Render(heading))
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}

	return nil
}

// loadRepos returns the org's repo payload, served from c while fresh.
// A nil c always fetches. Fetched payloads are written back to c.
func loadRepos(ctx context.Context, c *cache.OrgCache, client *github.OrgClient) ([]github.RepoRecord, error) {
	org := client.Name()

	if c != nil {
		cached, err := c.Get(org)
		if err == nil {
			log.WithField("org", org).Debug("serving repos from cache")
			return cached.Repos, nil
		}
		if !errors.Is(err, cache.ErrNotCached) && !errors.Is(err, cache.ErrExpired) {
			log.WithError(err).WithField("org", org).Warn("ignoring unreadable cache")
		}
	}

	record, err := client.Org(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch org %s: %w", org, err)
	}

	repos, err := client.ReposPayload(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repos of %s: %w", org, err)
	}

	if c != nil {
		if err := c.Set(org, record, repos); err != nil {
			log.WithError(err).WithField("org", org).Warn("failed to cache repos")
		}
	}

	return repos, nil
}
