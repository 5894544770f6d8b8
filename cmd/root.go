package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/kirksw/ghorg/internal/config"
	"github.com/kirksw/ghorg/internal/github"
	applog "github.com/kirksw/ghorg/internal/log"
	"github.com/kirksw/ghorg/internal/utils"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ghorg",
	Short:         "Inspect GitHub organizations and their public repositories",
	Long:          `ghorg reads GitHub organizations, lists and filters their public repositories by license, and caches the results locally.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applog.InitLogger(verbose)
	},
}

var (
	verbose    bool
	configPath string
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("228"))

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./config.toml, ~/.config/ghorg/config.toml, or ~/.ghorg.toml)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newOrgClient builds a client for the identifier the user typed.
func newOrgClient(cfg *config.Config, identifier string) (*github.OrgClient, error) {
	org, err := utils.ParseOrgIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	return github.NewOrgClient(org,
		github.WithBaseURL(cfg.GetBaseURL()),
		github.WithFetcher(utils.NewHTTPFetcher(cfg.GetGitHubToken())),
	), nil
}
