package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kirksw/ghorg/internal/stream"
	"github.com/spf13/cobra"
)

var (
	streamParallel int
	streamInterval time.Duration
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Generate paced random number sequences",
}

var streamCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect one sequence and print it",
	Args:  cobra.NoArgs,
	RunE:  runStreamCollect,
}

var streamMeasureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Collect several sequences at once and print the total runtime",
	Args:  cobra.NoArgs,
	RunE:  runStreamMeasure,
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.AddCommand(streamCollectCmd, streamMeasureCmd)

	streamCmd.PersistentFlags().DurationVar(&streamInterval, "interval", stream.DefaultInterval, "pause before each value")
	streamMeasureCmd.Flags().IntVarP(&streamParallel, "parallel", "p", stream.DefaultParallel, "number of sequences collected at once")
}

func newGenerator() *stream.Generator {
	g := stream.New()
	g.Interval = streamInterval
	return g
}

func runStreamCollect(cmd *cobra.Command, args []string) error {
	values, err := newGenerator().Collect(cmd.Context())
	if err != nil {
		return fmt.Errorf("collect failed: %w", err)
	}

	printValues(cmd.OutOrStdout(), values)
	return nil
}

func runStreamMeasure(cmd *cobra.Command, args []string) error {
	elapsed, err := newGenerator().MeasureRuntime(cmd.Context(), streamParallel)
	if err != nil {
		return fmt.Errorf("measure failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d sequences in %s\n", streamParallel, elapsed.Round(time.Millisecond))
	return nil
}

func printValues(out io.Writer, values []float64) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	fmt.Fprintf(out, "[%s]\n", strings.Join(parts, ", "))
}
