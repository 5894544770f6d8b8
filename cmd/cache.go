package cmd

import (
	"fmt"
	"time"

	"github.com/kirksw/ghorg/internal/cache"
	"github.com/kirksw/ghorg/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage organization cache",
}

var (
	forceRefresh bool
	ttlString    string
)

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.PersistentFlags().BoolVar(&forceRefresh, "force", false, "force refresh even if not expired")
	cacheCmd.PersistentFlags().StringVar(&ttlString, "ttl", "", "set custom TTL (e.g., 24h, 1h30m)")
}

// loadConfigAndCache applies the TTL from --ttl, falling back to config.
func loadConfigAndCache() (*config.Config, *cache.OrgCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	c := cache.New()
	c.SetTTL(cfg.GetCacheTTL())

	if ttlString != "" {
		duration, err := time.ParseDuration(ttlString)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid TTL format: %w", err)
		}
		c.SetTTL(duration)
	}

	return cfg, c, nil
}
