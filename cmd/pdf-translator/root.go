package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Finnson11-star/pdf-translator/internal/config"
	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/types"
)

type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "pdf-translator",
		Short:         "Translate PDF documents page by page",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with API keys")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(newTranslateCmd(opts))
	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// loadConfig reads .env, then the config file, then the environment.
func (o *rootOptions) loadConfig() (*config.ConfigManager, *types.Config, error) {
	if o.envFile != "" {
		// a missing .env is normal
		_ = godotenv.Load(o.envFile)
	}
	mgr, err := config.NewConfigManager(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, nil, err
	}
	return mgr, mgr.GetConfig(), nil
}

// initLogger sends logs to the configured file, and to stderr with --verbose.
// Without either the CLI stays quiet so the progress bar is readable.
func (o *rootOptions) initLogger(cfg *types.Config) error {
	if cfg.LogFile == "" && !o.verbose {
		logger.SetGlobalLogger(logger.NewNop())
		return nil
	}
	return logger.Init(&logger.Config{
		LogFilePath:   cfg.LogFile,
		Level:         logger.ParseLevel(cfg.LogLevel),
		EnableConsole: o.verbose,
	})
}
