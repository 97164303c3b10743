package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clause/internal/connectors/filesystem"
	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/logger"
	"github.com/custodia-labs/clause/internal/normalisers"
)

var (
	ingestURI   string
	ingestMIME  string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Add documents to the index",
	Long: `Normalises, chunks and embeds documents so questions can be answered from them.

Paths may be files or directories. Directories are walked recursively and
files without a supported format (plain text, markdown, YAML) are skipped.
Re-ingesting a path replaces the previous version.

Use "-" with --uri to read a single document from stdin.

With --watch and a single directory, the command keeps running after the
initial pass: new and changed files are re-ingested and deleted files are
removed from the index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURI, "uri", "", "document URI when reading from stdin")
	ingestCmd.Flags().StringVar(&ingestMIME, "mime", "text/plain", "MIME type when reading from stdin")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for changes")
	rootCmd.AddCommand(servicesCommand(ingestCmd))
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestWatch {
		if len(args) != 1 {
			return errors.New("--watch takes exactly one directory")
		}
		if info, err := os.Stat(args[0]); err != nil || !info.IsDir() {
			return fmt.Errorf("--watch needs a directory: %s", args[0])
		}
	}

	var (
		docs, chunks int
		errs         []error
	)
	record := func(uri string, n int) {
		docs++
		chunks += n
		cmd.Printf("Ingested %s (%d chunks)\n", uri, n)
	}

	for _, path := range args {
		if path == "-" {
			n, err := ingestStdin(cmd)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			record(ingestURI, n)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		if !info.IsDir() {
			result, err := ingestService.IngestFile(cmd.Context(), path)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			record(result.Document.URI, result.ChunkCount)
			continue
		}

		files, err := filesystem.New(path).Files(cmd.Context())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for _, p := range files {
			result, err := ingestService.IngestFile(cmd.Context(), p)
			if errors.Is(err, domain.ErrUnsupportedFormat) {
				logger.Debug("skipping %s: unsupported format", p)
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
				continue
			}
			record(result.Document.URI, result.ChunkCount)
		}
	}

	cmd.Println()
	cmd.Printf("Total: %d documents, %d chunks\n", docs, chunks)

	if len(errs) > 0 {
		return fmt.Errorf("ingest failed for %d path(s): %w", len(errs), errors.Join(errs...))
	}

	if ingestWatch {
		return watchFolder(cmd, args[0])
	}
	return nil
}

// watchFolder keeps the index in sync with root until the command context ends.
func watchFolder(cmd *cobra.Command, root string) error {
	w := filesystem.New(root)
	defer w.Close()

	changes, err := w.Watch(cmd.Context())
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", root)

	for change := range changes {
		applyChange(cmd, change)
	}
	return nil
}

func applyChange(cmd *cobra.Command, change filesystem.Change) {
	ctx := cmd.Context()

	if change.Type == filesystem.ChangeDeleted {
		if documentService == nil {
			return
		}
		err := documentService.Remove(ctx, normalisers.DocumentID(change.Path))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("remove %s: not indexed", change.Path)
		case err != nil:
			logger.Warn("remove %s: %v", change.Path, err)
		default:
			cmd.Printf("Removed %s\n", change.Path)
		}
		return
	}

	result, err := ingestService.IngestFile(ctx, change.Path)
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		logger.Debug("skipping %s: unsupported format", change.Path)
	case err != nil:
		logger.Warn("ingest %s: %v", change.Path, err)
	default:
		cmd.Printf("Ingested %s (%d chunks, %s)\n", result.Document.URI, result.ChunkCount, change.Type)
	}
}

func ingestStdin(cmd *cobra.Command) (int, error) {
	if ingestURI == "" {
		return 0, errors.New("--uri is required when reading from stdin")
	}

	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return 0, fmt.Errorf("failed to read stdin: %w", err)
	}

	result, err := ingestService.IngestText(cmd.Context(), ingestURI, ingestMIME, content)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ingestURI, err)
	}
	return result.ChunkCount, nil
}
