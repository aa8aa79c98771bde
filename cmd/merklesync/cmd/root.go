package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aweris/merklesync"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:           "merklesync",
	Short:         "Merkle tree anti-entropy for keyed collections",
	Long:          "Build Merkle trees over record collections, find where a replica diverges from its source and reconcile it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ~/.config/merklesync/config.yaml)")
	flags.Bool("canonical", false, "sort leaves by key before building trees")
	flags.Int("workers", 1, "goroutines used to hash leaves")
	flags.Int("cache-size", 4096, "fingerprint cache entries (0 disables)")
	flags.String("log-format", "console", "log format: console or json")
	flags.BoolP("verbose", "v", false, "debug logging")

	viper.BindPFlag("canonical", flags.Lookup("canonical"))
	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("cache_size", flags.Lookup("cache-size"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MERKLESYNC")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "merklesync")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "merklesync")
	}
	return ".merklesync"
}

func newLogger() (*zap.Logger, error) {
	var cfg zap.Config
	if viper.GetString("log_format") == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func buildOptions() ([]merklesync.BuildOption, error) {
	hasher, err := merklesync.NewHasher(viper.GetInt("cache_size"))
	if err != nil {
		return nil, err
	}
	return []merklesync.BuildOption{
		merklesync.WithCanonicalOrder(viper.GetBool("canonical")),
		merklesync.WithWorkers(viper.GetInt("workers")),
		merklesync.WithHasher(hasher),
	}, nil
}

// newStore creates a store configured from flags and config.
func newStore() (*merklesync.Store, func(), error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, errors.Wrap(err, "create logger")
	}
	opts, err := buildOptions()
	if err != nil {
		return nil, nil, err
	}
	store := merklesync.NewStore(
		merklesync.WithLogger(logger),
		merklesync.WithBuildOptions(opts...),
	)
	return store, func() { _ = logger.Sync() }, nil
}
