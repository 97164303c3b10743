// Package cli provides the clause command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/core/ports/driving"
	"github.com/custodia-labs/clause/internal/logger"
)

// version is overridden at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Command annotations declaring what a command needs before it runs.
const (
	needsAnnotation = "clause.needs"
	needsSettings   = "settings"
	needsServices   = "services"
)

// Settings is the configuration layer, usable even when the pipeline
// cannot be wired (for example while fixing an invalid config file).
type Settings struct {
	Store       driven.ConfigStore
	Config      domain.Config
	ConfigErr   error
	PromptDir   string
	PromptNames []string
	Validator   driven.AIConfigValidator

	// CheckValue reports whether setting key to value still yields a valid configuration.
	CheckValue func(key string, value any) error
}

// Services holds the driving ports the commands call.
type Services struct {
	Answer   driving.AnswerService
	Ingest   driving.IngestService
	History  driving.HistoryService
	Document driving.DocumentService

	// Close releases the stores and generator handles.
	Close func() error
}

// Bootstrapper wires the application on demand.
type Bootstrapper interface {
	// Settings opens the config store under home and loads the effective configuration.
	Settings(home string) (*Settings, error)

	// Services wires the answering pipeline from valid settings.
	Services(ctx context.Context, settings *Settings) (*Services, error)
}

var (
	bootstrapper Bootstrapper

	homeDir string
	verbose bool

	configStore     driven.ConfigStore
	appConfig       domain.Config
	configErr       error
	promptDir       string
	promptNames     []string
	configValidator driven.AIConfigValidator
	checkValue      func(key string, value any) error

	answerService   driving.AnswerService
	ingestService   driving.IngestService
	historyService  driving.HistoryService
	documentService driving.DocumentService
	closeServices   func() error
)

var rootCmd = &cobra.Command{
	Use:   "clause",
	Short: "Answer decision questions from your own documents",
	Long: `Clause answers yes/no style questions (claims, approvals, eligibility)
from documents you ingest. Every answer carries a decision, an optional
amount, a justification and the clauses it was based on.

Configuration lives in ~/.clause/config.toml.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "clause home directory (default ~/.clause)")
}

// SetBootstrapper registers the wiring used by commands that need services.
func SetBootstrapper(b Bootstrapper) {
	bootstrapper = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases any services it opened.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("closing services: %v", cerr)
		}
		closeServices = nil
	}
	return err
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Annotations[needsAnnotation] {
	case needsSettings:
		return ensureSettings()
	case needsServices:
		if err := ensureSettings(); err != nil {
			return err
		}
		return ensureServices(cmd.Context())
	default:
		return nil
	}
}

func ensureSettings() error {
	if configStore != nil {
		return nil
	}
	if bootstrapper == nil {
		return errors.New("configuration not available")
	}

	settings, err := bootstrapper.Settings(homeDir)
	if err != nil {
		return err
	}
	configStore = settings.Store
	appConfig = settings.Config
	configErr = settings.ConfigErr
	promptDir = settings.PromptDir
	promptNames = settings.PromptNames
	configValidator = settings.Validator
	checkValue = settings.CheckValue
	return nil
}

func ensureServices(ctx context.Context) error {
	if answerService != nil {
		return nil
	}
	if configErr != nil {
		return configErr
	}
	if bootstrapper == nil {
		return errors.New("services not configured")
	}

	svc, err := bootstrapper.Services(ctx, &Settings{
		Store:       configStore,
		Config:      appConfig,
		PromptDir:   promptDir,
		PromptNames: promptNames,
		Validator:   configValidator,
		CheckValue:  checkValue,
	})
	if err != nil {
		return err
	}
	answerService = svc.Answer
	ingestService = svc.Ingest
	historyService = svc.History
	documentService = svc.Document
	closeServices = svc.Close
	return nil
}

// servicesCommand marks cmd as needing the full pipeline.
func servicesCommand(cmd *cobra.Command) *cobra.Command {
	return annotate(cmd, needsServices)
}

// settingsCommand marks cmd as needing only the configuration layer.
func settingsCommand(cmd *cobra.Command) *cobra.Command {
	return annotate(cmd, needsSettings)
}

func annotate(cmd *cobra.Command, need string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[needsAnnotation] = need
	return cmd
}
