package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// rawOutputPreview bounds how much generator output is echoed on failure.
const rawOutputPreview = 400

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer a question from ingested documents",
	Long: `Retrieves the most relevant clauses for the question, asks the configured
generator for a structured decision and validates the reply.

The answer cites its evidence as E1, E2, ... Failed runs report one of
empty_evidence, schema_violation or generator_error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the outcome as JSON")
	rootCmd.AddCommand(servicesCommand(askCmd))
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	query := strings.Join(args, " ")
	outcome, err := answerService.Process(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return writeJSON(cmd, outcome)
	}
	printOutcome(cmd, outcome)
	return nil
}

func printOutcome(cmd *cobra.Command, outcome domain.ValidationOutcome) {
	if !outcome.IsAnswer() {
		printFailure(cmd, outcome)
		return
	}

	a := outcome.Answer
	cmd.Printf("Decision:   %s\n", a.Decision)
	if a.Amount != nil {
		cmd.Printf("Amount:     %.2f\n", *a.Amount)
	}
	if a.ConfidenceAdjusted {
		cmd.Printf("Confidence: %.2f (adjusted)\n", a.Confidence)
	} else {
		cmd.Printf("Confidence: %.2f\n", a.Confidence)
	}
	cmd.Println()
	cmd.Println("Justification:")
	cmd.Printf("  %s\n", a.Justification)

	if len(a.CitedClauses) > 0 {
		cmd.Println()
		cmd.Println("Cited clauses:")
		for _, c := range a.CitedClauses {
			if c.RelevanceNote != "" {
				cmd.Printf("  [%s] %s\n", c.FragmentRef, c.RelevanceNote)
			} else {
				cmd.Printf("  [%s]\n", c.FragmentRef)
			}
		}
	}

	if len(a.Diagnostics) > 0 {
		cmd.Println()
		cmd.Println("Diagnostics:")
		for _, d := range a.Diagnostics {
			cmd.Printf("  %s: %s\n", d.Code, d.Message)
		}
	}

	cmd.Println()
	cmd.Printf("Evidence: %d fragments, %d attempt(s)\n", outcome.EvidenceCount, outcome.Attempts)
}

func printFailure(cmd *cobra.Command, outcome domain.ValidationOutcome) {
	if outcome.Failure == nil {
		cmd.Println("No answer.")
		return
	}

	f := outcome.Failure
	cmd.Printf("No answer: %s\n", f.Reason)
	if f.Detail != "" {
		cmd.Printf("  %s\n", f.Detail)
	}
	if f.RawOutput != "" {
		cmd.Println()
		cmd.Println("Generator output:")
		cmd.Printf("  %s\n", truncate(f.RawOutput, rawOutputPreview))
	}
	cmd.Println()
	cmd.Printf("Evidence: %d fragments, %d attempt(s)\n", outcome.EvidenceCount, outcome.Attempts)
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
