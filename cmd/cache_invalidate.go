package cmd

import (
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/kirksw/ghorg/internal/cache"
	"github.com/spf13/cobra"
)

var invalidateCacheCmd = &cobra.Command{
	Use:   "invalidate [org]",
	Short: "Drop cached snapshots (all or one organization)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInvalidateCache,
}

func init() {
	cacheCmd.AddCommand(invalidateCacheCmd)
}

func runInvalidateCache(cmd *cobra.Command, args []string) error {
	c := cache.New()

	orgs := args
	if len(orgs) == 0 {
		all, err := c.ListAll()
		if err != nil {
			return fmt.Errorf("failed to list cached organizations: %w", err)
		}
		orgs = all
	}

	return invalidateOrgs(cmd.OutOrStdout(), c, orgs)
}

// invalidateOrgs drops each org's snapshot and reports all failures
// together.
func invalidateOrgs(out io.Writer, c *cache.OrgCache, orgs []string) error {
	if len(orgs) == 0 {
		fmt.Fprintln(out, "No cached organizations found")
		return nil
	}

	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Invalidating %d organization(s):", len(orgs))))

	var result *multierror.Error
	for _, org := range orgs {
		if err := c.Invalidate(org); err != nil {
			log.WithError(err).WithField("org", org).Error("invalidate failed")
			fmt.Fprintf(out, "  Failed to invalidate %s: %v\n", org, err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", org, err))
			continue
		}
		log.WithField("org", org).Debug("cache invalidated")
		fmt.Fprintf(out, "  ✓ %s\n", org)
	}

	return result.ErrorOrNil()
}
