package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hackmaster/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Set up in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

// skipConfig marks commands that must run even when the config file is broken
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "hackmaster",
	Short: "HackMaster Pi dashboard and credential wordlist generator",
	Long: `hackmaster turns personal facts (dates, phone numbers, names, ID numbers
and a Wi-Fi network name) into a candidate password list.

Run "hackmaster serve" for the web dashboard or "hackmaster generate" to
write a wordlist straight from facts files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.DefaultConfig()
		path := ""
		if cmd.Annotations[skipConfig] != "true" {
			loaded, found, err := loadConfig()
			if err != nil {
				return err
			}
			cfg, path = loaded, found
		}

		var err error
		logger, err = newLogger(cfg.Log.Level, verbose)
		if err != nil {
			return err
		}
		if path != "" {
			logger.Debug("loaded config", zap.String("path", path))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: search standard locations)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, string, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}
