package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(servicesCommand(historyCmd))
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	records, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No questions answered yet.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cmd.Printf("%s  %-16s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Status, truncate(r.Query, 60))
		switch {
		case r.Decision != "" && r.Confidence != nil:
			cmd.Printf("    %s (confidence %.2f)\n", r.Decision, *r.Confidence)
		case r.Detail != "":
			cmd.Printf("    %s\n", truncate(r.Detail, 100))
		}
	}
	return nil
}
