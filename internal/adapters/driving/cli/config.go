package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clause/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
	Long:  `Show, edit and check the settings in ~/.clause/config.toml.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a dot-notation key such as selector.min_similarity or llm.model.

Numbers and true/false are stored as TOML numbers and booleans; anything
else is stored as a string. Durations are strings like "30s". The change is
rejected if it would make the configuration invalid.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:       "set-key [embedding|llm]",
	Short:     "Store a provider API key",
	Long:      `Prompts for an API key without echoing it and stores it in config.toml.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"embedding", "llm"},
	RunE:      runConfigSetKey,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Contact the configured providers",
	Long:  `Validates the configuration and pings the embedding and LLM providers.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(settingsCommand(configShowCmd))
	configCmd.AddCommand(settingsCommand(configSetCmd))
	configCmd.AddCommand(settingsCommand(configSetKeyCmd))
	configCmd.AddCommand(settingsCommand(configCheckCmd))
	configCmd.AddCommand(settingsCommand(configPathCmd))
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n", configStore.Path())
	if promptDir != "" {
		cmd.Printf("Prompts:     %s (%s)\n", promptDir, strings.Join(promptNames, ", "))
	}
	cmd.Println()

	if configErr != nil {
		cmd.Printf("Configuration is invalid: %v\n", configErr)
		cmd.Println()
		cmd.Println("Stored values:")
		for _, key := range configStore.Keys() {
			val, _ := configStore.Get(key)
			if strings.HasSuffix(key, "api_key") {
				val = maskAPIKey(fmt.Sprint(val))
			}
			cmd.Printf("  %s = %v\n", key, val)
		}
		return nil
	}

	c := appConfig
	cmd.Println("[retrieval]")
	cmd.Printf("  top_k = %d\n", c.Retrieval.TopK)
	cmd.Println("[selector]")
	cmd.Printf("  max_total_length = %d\n", c.Selector.MaxTotalLength)
	cmd.Printf("  min_similarity = %g\n", c.Selector.MinSimilarity)
	cmd.Printf("  max_overlap_ratio = %g\n", c.Selector.MaxOverlapRatio)
	cmd.Println("[assembler]")
	cmd.Printf("  max_query_length = %d\n", c.Assembler.MaxQueryLength)
	cmd.Println("[generation]")
	cmd.Printf("  temperature = %g\n", c.Generation.Temperature)
	cmd.Printf("  max_tokens = %d\n", c.Generation.MaxTokens)
	cmd.Printf("  timeout = %s\n", c.Generation.Timeout)
	cmd.Printf("  max_attempts = %d\n", c.Generation.MaxAttempts)
	cmd.Printf("  backoff_initial = %s\n", c.Generation.BackoffInitial)
	cmd.Printf("  backoff_max = %s\n", c.Generation.BackoffMax)
	cmd.Printf("  pool_size = %d\n", c.Generation.PoolSize)
	cmd.Printf("  requests_per_minute = %d\n", c.Generation.RequestsPerMinute)
	cmd.Println("[validator]")
	cmd.Printf("  confidence_policy = %s\n", c.Validator.ConfidencePolicy)
	cmd.Println("[batch]")
	cmd.Printf("  workers = %d\n", c.Batch.Workers)
	cmd.Println("[ingest]")
	cmd.Printf("  chunk_size = %d\n", c.Ingest.ChunkSize)
	cmd.Printf("  chunk_overlap = %d\n", c.Ingest.ChunkOverlap)
	cmd.Println("[embedding]")
	printProvider(cmd, c.Embedding.Provider, c.Embedding.Model, c.Embedding.BaseURL, c.Embedding.APIKey,
		c.Embedding.IsConfigured())
	cmd.Println("[llm]")
	printProvider(cmd, c.LLM.Provider, c.LLM.Model, c.LLM.BaseURL, c.LLM.APIKey, c.LLM.IsConfigured())
	cmd.Println("[vector]")
	cmd.Printf("  backend = %s\n", c.Vector.Backend)
	if c.Vector.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  qdrant_url = %s\n", c.Vector.QdrantURL)
		cmd.Printf("  qdrant_collection = %s\n", c.Vector.QdrantCollection)
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  provider = %s\n", provider)
	cmd.Printf("  model = %s\n", model)
	if baseURL != "" {
		cmd.Printf("  base_url = %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  api_key = %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Println("  api_key = (not set)")
		}
	}
	if !configured {
		cmd.Println("  # not configured")
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], parseValue(args[1])
	if checkValue != nil {
		if err := checkValue(key, value); err != nil {
			return fmt.Errorf("rejected %s: %w", key, err)
		}
	}
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	section := args[0]
	if section != "embedding" && section != "llm" {
		return fmt.Errorf("unknown provider section %q (use embedding or llm)", section)
	}

	cmd.Printf("Enter %s API key: ", section)
	key := readSecret(cmd.InOrStdin())
	cmd.Println()
	if key == "" {
		return errors.New("no API key entered")
	}

	if err := configStore.Set(section+".api_key", key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	cmd.Printf("Stored %s API key %s\n", section, maskAPIKey(key))
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}
	if configValidator == nil {
		return errors.New("config validator not configured")
	}

	var failed int
	check := func(name string, err error) {
		if err != nil {
			failed++
			cmd.Printf("  %-10s FAIL  %v\n", name, err)
			return
		}
		cmd.Printf("  %-10s ok\n", name)
	}

	cmd.Println("Checking providers:")
	check("embedding", configValidator.ValidateEmbedding(cmd.Context(), &appConfig.Embedding))
	check("llm", configValidator.ValidateLLM(cmd.Context(), &appConfig.LLM))

	if failed > 0 {
		return fmt.Errorf("%d provider check(s) failed", failed)
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

// parseValue maps a command line value onto the TOML type it represents.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
