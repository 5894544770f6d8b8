package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/kirksw/ghorg/internal/cache"
	"github.com/kirksw/ghorg/internal/github"
	"github.com/spf13/cobra"
)

var refreshCacheCmd = &cobra.Command{
	Use:   "refresh [org]",
	Short: "Refresh cache for organization(s)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRefreshCache,
}

func init() {
	cacheCmd.AddCommand(refreshCacheCmd)
}

func runRefreshCache(cmd *cobra.Command, args []string) error {
	cfg, c, err := loadConfigAndCache()
	if err != nil {
		return err
	}

	orgs := cfg.GetOrganizations()
	if len(args) == 1 {
		orgs = []string{args[0]}
	}
	if len(orgs) == 0 {
		return fmt.Errorf("no organizations specified in config or as argument")
	}

	clients := make([]*github.OrgClient, 0, len(orgs))
	for _, org := range orgs {
		client, err := newOrgClient(cfg, org)
		if err != nil {
			return err
		}
		clients = append(clients, client)
	}

	return refreshOrgs(cmd.Context(), cmd.OutOrStdout(), c, clients, forceRefresh)
}

// refreshOrgs refreshes every org and reports all failures together.
// Fresh snapshots are skipped unless force is set.
func refreshOrgs(ctx context.Context, out io.Writer, c *cache.OrgCache, clients []*github.OrgClient, force bool) error {
	var result *multierror.Error

	for _, client := range clients {
		org := client.Name()

		if !force && !c.IsExpired(org) {
			fmt.Fprintf(out, "✓ %s is fresh, skipping (use --force to refresh)\n", org)
			continue
		}

		fmt.Fprintf(out, "Refreshing cache for %s...\n", org)

		var count int
		err := c.Refresh(org, func() (github.OrgRecord, []github.RepoRecord, error) {
			record, err := client.Org(ctx)
			if err != nil {
				return nil, nil, err
			}
			repos, err := client.ReposPayload(ctx)
			if err != nil {
				return nil, nil, err
			}
			count = len(repos)
			return record, repos, nil
		})
		if err != nil {
			log.WithError(err).WithField("org", org).Error("refresh failed")
			fmt.Fprintf(out, "Failed to refresh %s: %v\n", org, err)
			result = multierror.Append(result, err)
			continue
		}

		fmt.Fprintf(out, "✓ Cached %d repositories from %s\n", count, org)
	}

	return result.ErrorOrNil()
}
