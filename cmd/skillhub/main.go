package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillhub/pkg/config"
	"github.com/jingkaihe/skillhub/pkg/logger"
	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

var (
	cfg             config.Config
	shutdownTracing = func(context.Context) error { return nil }
)

func init() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logger.L.WithError(err).Warn("failed to load .env file")
	}

	config.SetDefaults(viper.GetViper())
	if err := config.Setup(viper.GetViper(), "$HOME/.skillhub", "."); err != nil {
		logger.L.WithError(err).Warn("failed to read config file, using defaults")
	}
}

var rootCmd = &cobra.Command{
	Use:   "skillhub",
	Short: "Install and manage agent skills across AI coding tools",
	Long: `skillhub installs agent skills (directories holding a SKILL.md manifest) from git
repositories into the skills directories of Claude Code, Antigravity and Gemini CLI,
lists what is installed where, and removes skills again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
			return skillerr.Configuration("invalid log level "+cfg.LogLevel, err)
		}
		logger.SetLogFormat(cfg.LogFormat)
		presenter.SetQuiet(viper.GetBool("quiet"))

		if _, err := parseOutputFormat(viper.GetString("output")); err != nil {
			return err
		}

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			logger.G(cmd.Context()).WithError(err).Warn("failed to initialize tracing")
		} else {
			shutdownTracing = shutdown
		}

		cmd.SetContext(logger.WithOperation(cmd.Context(), cmd.Name()))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, text, json)")
	rootCmd.PersistentFlags().StringP("output", "o", string(formatTable), "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print command output, no status messages")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	if shutdownErr := shutdownTracing(context.Background()); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to shut down tracing")
	}
	cancel()

	if err != nil {
		presenter.Error(err, errorContext(err))
		os.Exit(exitCode(err))
	}
}

// errorContext names the failing area for the error banner
func errorContext(err error) string {
	switch skillerr.KindOf(err) {
	case skillerr.KindConfiguration:
		return "Configuration error"
	case skillerr.KindValidation:
		return "Invalid input"
	case skillerr.KindAlreadyExists:
		return "Already installed"
	case skillerr.KindNotFound:
		return "Not found"
	case skillerr.KindExternalTool:
		return "External tool failed"
	case skillerr.KindFilesystem:
		return "Filesystem error"
	}
	return ""
}

// exitCode maps an error to the process exit status. Interrupted runs use
// the shell convention for SIGINT.
func exitCode(err error) int {
	if skillerr.IsCode(err, skillerr.CodeCanceled) || errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
