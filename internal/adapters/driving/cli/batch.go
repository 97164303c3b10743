package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/clause/internal/core/domain"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Answer many questions concurrently",
	Long: `Reads one question per line from a file, or from stdin when the file is "-".
Blank lines and lines starting with # are skipped. A .yaml or .yml file is
read as a list of strings.

Writes one JSON object per question, in input order. Concurrency is set by
batch.workers in config.toml.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(servicesCommand(batchCmd))
}

// batchLine is one JSON line of batch output.
type batchLine struct {
	Index   int                      `json:"index"`
	Query   string                   `json:"query"`
	Status  string                   `json:"status"`
	Outcome *domain.ValidationOutcome `json:"outcome,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	queries, err := readQueries(cmd, args[0])
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return errors.New("no queries to process")
	}

	results := answerService.ProcessBatch(cmd.Context(), queries)

	enc := json.NewEncoder(cmd.OutOrStdout())
	for i, r := range results {
		line := batchLine{Index: i, Query: r.Query}
		if r.Err != nil {
			line.Status = "error"
			line.Error = r.Err.Error()
		} else {
			outcome := r.Outcome
			line.Status = outcome.Status()
			line.Outcome = &outcome
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write result %d: %w", i, err)
		}
	}
	return nil
}

func readQueries(cmd *cobra.Command, source string) ([]string, error) {
	if source == "-" {
		return parseQueryLines(cmd.InOrStdin())
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return parseQueryYAML(f)
	default:
		return parseQueryLines(f)
	}
}

func parseQueryLines(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}

func parseQueryYAML(r io.Reader) ([]string, error) {
	var queries []string
	if err := yaml.NewDecoder(r).Decode(&queries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse query list: %w", err)
	}
	return queries, nil
}
