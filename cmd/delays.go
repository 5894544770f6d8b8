package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kirksw/ghorg/internal/config"
	"github.com/kirksw/ghorg/internal/delay"
	"github.com/spf13/cobra"
)

var delayMax time.Duration

var delaysCmd = &cobra.Command{
	Use:   "delays",
	Short: "Run concurrent random delays",
}

var waitNCmd = &cobra.Command{
	Use:   "wait-n [n]",
	Short: "Run n random waits at once and print the delays in ascending order",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWaitN,
}

var taskWaitNCmd = &cobra.Command{
	Use:   "task-wait-n [n]",
	Short: "Like wait-n, using background task handles",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTaskWaitN,
}

var measureDelaysCmd = &cobra.Command{
	Use:   "measure [n]",
	Short: "Print the average time per wait of wait-n",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMeasureDelays,
}

func init() {
	rootCmd.AddCommand(delaysCmd)
	delaysCmd.AddCommand(waitNCmd, taskWaitNCmd, measureDelaysCmd)

	delaysCmd.PersistentFlags().DurationVar(&delayMax, "max", 0, "upper bound of each delay (default from config, 10s)")
}

// delayArgs resolves n and the max delay from args, flags and config.
func delayArgs(cmd *cobra.Command, args []string) (int, time.Duration, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 0, 0, err
	}
	return resolveDelayArgs(cfg, args, delayMax, cmd.Flags().Changed("max"))
}

func resolveDelayArgs(cfg *config.Config, args []string, maxFlag time.Duration, maxSet bool) (int, time.Duration, error) {
	n := cfg.GetRoutines()
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid routine count %q: %w", args[0], err)
		}
		n = parsed
	}

	max := cfg.GetMaxDelay()
	if maxSet {
		max = maxFlag
	}

	return n, max, nil
}

func runWaitN(cmd *cobra.Command, args []string) error {
	n, max, err := delayArgs(cmd, args)
	if err != nil {
		return err
	}

	delays, err := delay.New().WaitN(cmd.Context(), n, max)
	if err != nil {
		return fmt.Errorf("wait-n failed: %w", err)
	}

	printDelays(cmd.OutOrStdout(), delays)
	return nil
}

func runTaskWaitN(cmd *cobra.Command, args []string) error {
	n, max, err := delayArgs(cmd, args)
	if err != nil {
		return err
	}

	delays, err := delay.New().TaskWaitN(cmd.Context(), n, max)
	if err != nil {
		return fmt.Errorf("task-wait-n failed: %w", err)
	}

	printDelays(cmd.OutOrStdout(), delays)
	return nil
}

func runMeasureDelays(cmd *cobra.Command, args []string) error {
	n, max, err := delayArgs(cmd, args)
	if err != nil {
		return err
	}

	avg, err := delay.New().MeasureTime(cmd.Context(), n, max)
	if err != nil {
		return fmt.Errorf("measure failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d waits, %s per wait\n", n, avg.Round(time.Millisecond))
	return nil
}

func printDelays(out io.Writer, delays []time.Duration) {
	parts := make([]string, len(delays))
	for i, d := range delays {
		parts[i] = d.Round(time.Millisecond).String()
	}
	fmt.Fprintf(out, "[%s]\n", strings.Join(parts, ", "))
}
