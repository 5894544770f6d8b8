package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kirksw/ghorg/internal/github"
	"github.com/kirksw/ghorg/internal/utils"
	"github.com/spf13/cobra"
)

var orgField string

var orgCmd = &cobra.Command{
	Use:   "org <name>",
	Short: "Print an organization record or one of its fields",
	Example: `  ghorg org google
  ghorg org google --field repos_url
  ghorg org https://github.com/google --field plan.name`,
	Args: cobra.ExactArgs(1),
	RunE: runOrg,
}

func init() {
	rootCmd.AddCommand(orgCmd)

	orgCmd.Flags().StringVarP(&orgField, "field", "f", "", "dotted path of a nested field (e.g. repos_url, plan.name)")
}

func runOrg(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newOrgClient(cfg, args[0])
	if err != nil {
		return err
	}

	record, err := client.Org(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch org %s: %w", client.Name(), err)
	}

	return printOrgField(cmd.OutOrStdout(), record, orgField)
}

// printOrgField writes the value at the dotted field of record, or the
// whole record when field is empty. Strings print bare, anything else as
// indented JSON.
func printOrgField(out io.Writer, record github.OrgRecord, field string) error {
	value, err := utils.AccessNestedMap(record, utils.SplitPath(field))
	if err != nil {
		return err
	}

	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(out, s)
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", field, err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
