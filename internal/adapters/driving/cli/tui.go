package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clause/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive console",
	Long: `Launch the interactive terminal console.

Ask questions and read cited decisions, browse previous outcomes, and
inspect or remove ingested documents with keyboard navigation.

Controls:
  ↑/k, ↓/j - Move
  Enter    - Ask / Select
  n        - New question
  x        - Remove document
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(servicesCommand(tuiCmd))
}

// newTUIApp builds the console over the wired services.
func newTUIApp() (*tui.App, error) {
	ports := &tui.Ports{
		Answer:   answerService,
		History:  historyService,
		Document: documentService,
	}

	return tui.NewApp(ports, tui.WithMaxQueryLength(appConfig.Assembler.MaxQueryLength))
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	app, err := newTUIApp()
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
