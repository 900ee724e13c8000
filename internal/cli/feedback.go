package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var feedbackRequestID string

// feedbackCmd represents the feedback command
var feedbackCmd = &cobra.Command{
	Use:   "feedback <score> [comment]",
	Short: "Record an NPS score (0-10) with an optional comment",
	Long: `Feedback sends one NPS event through the configured telemetry sink.
Unlike the automatic per-analysis log, a failed delivery is reported.

Example:
  factlens feedback 9 "Rápido e claro"
  factlens feedback 3 --request-id 7d3f... "Fontes fracas"
  factlens feedback last`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFeedback,
}

var feedbackLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent feedback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		fb, err := a.feedback().Last(cmd.Context())
		if err != nil {
			return err
		}
		if fb == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No feedback recorded yet")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d/10 on %s\n", fb.Score, fb.Date.Format("2006-01-02 15:04"))
		if fb.Comment != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%q\n", fb.Comment)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.AddCommand(feedbackLastCmd)
	feedbackCmd.Flags().StringVar(&feedbackRequestID, "request-id", "", "request the feedback refers to")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	score, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("score must be a number between 0 and 10: %q", args[0])
	}
	comment := ""
	if len(args) == 2 {
		comment = args[1]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	fb, err := a.feedback().Submit(cmd.Context(), score, comment, feedbackRequestID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Feedback recorded (%d/10) via %s\n", fb.Score, a.sink.Name())
	return nil
}
