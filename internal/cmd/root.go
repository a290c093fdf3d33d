// Package cmd implements the querylens CLI.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core/store"
	"github.com/querylens/querylens/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package via SetVersionInfo.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "querylens",
	Short: "Batch Google Autocomplete harvester (SerpAPI)",
	Long: `QueryLens expands seed keywords into query variants, fetches Google
Autocomplete suggestions through SerpAPI with pacing and retries, and
exports the results as tables, JSON, or CSV.

Use the subcommands to perform specific operations.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/querylens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads the config file and environment variables.
func initConfig() {
	observability.InitCLILogger(verbose)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if configDir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(configDir, "querylens"))
		}
		viper.AddConfigPath("./config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("QUERYLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The key is also picked up from the conventional SERPAPI_KEY variable.
	_ = viper.BindEnv("serpapi.api_key", "QUERYLENS_SERPAPI_API_KEY", "SERPAPI_KEY")

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			observability.CLILogger.Debug("Using config file", zap.String("path", viper.ConfigFileUsed()))
		}
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
		observability.CLILogger.Warn("Error reading config file", zap.Error(err))
	}

	setDefaults()

	if _, err := config.Load(); err != nil {
		observability.CLILogger.Fatal("Invalid configuration", zap.Error(err))
	}
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "10m")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")

	// Store defaults
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.path", store.DefaultStorePath())

	// SerpAPI defaults
	viper.SetDefault("serpapi.base_url", "https://serpapi.com/search")
	viper.SetDefault("serpapi.timeout", "20s")

	// UK-friendly localisation defaults
	viper.SetDefault("locale", map[string]string{
		"gl":     "uk",
		"hl":     "en",
		"client": "chrome",
	})

	// Request pacing defaults
	viper.SetDefault("pacing.rpm", 60)
	viper.SetDefault("pacing.max_retries", 2)
	viper.SetDefault("pacing.backoff", "3s")

	// Expansion defaults
	viper.SetDefault("expand.letters", false)
	viper.SetDefault("expand.keep_seed_first", true)
	viper.SetDefault("expand.dedupe", true)

	// Output defaults
	viper.SetDefault("output.format", "table")
	viper.SetDefault("output.delimiter", ",")
}
