package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/rainier/internal/logging"
	"github.com/ppiankov/rainier/internal/metrics"
	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/pipeline"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// configKeys lists the settings that can be overridden with RAINIER_* env vars
var configKeys = []string{
	"server.addr", "server.env", "server.title", "server.max_upload_bytes",
	"server.requests_per_minute",
	"catalog.file",
	"questions.file",
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
	"llm.max_tokens", "llm.requests_per_second", "llm.burst_size",
	"llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"cache.enabled", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
	"concurrency.workers",
	"log.level", "log.file", "log.json",
	"output.verbose", "output.include_contract",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rainier",
	Short: "Rainier - ASC 606 contract review assistant",
	Long: `Rainier reviews commercial contracts for revenue recognition.

It flags sentences containing ASC 606 trigger phrases across thirteen
review categories (lemma-normalized, so "invoices" matches "invoice"),
and asks an AI model a fixed set of CUAD legal questions about the
contract.

Flagging is advisory. Every flagged term still needs human review.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Rainier.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rainier %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rainier/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".rainier"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match RAINIER_*
	viper.SetEnvPrefix("RAINIER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file, env vars and bound flags over the defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}

// session bundles what every analysis command needs
type session struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
}

// newSession builds the logger and pipeline from the effective configuration
func newSession(mutate func(*model.Config)) (*session, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	m := metrics.New()
	p, err := pipeline.New(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, metrics: m, pipeline: p}, nil
}

// close flushes buffered log entries
func (s *session) close() {
	_ = s.logger.Sync()
}
