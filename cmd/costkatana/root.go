package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/costkatana"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "costkatana.yaml"

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "costkatana",
	Short: "CostKatana - LLM cost tracking and optimization",
	Long: `CostKatana estimates what LLM calls will cost, tracks what they did cost,
and suggests how to spend less.

It works offline against a built-in pricing table covering OpenAI,
Anthropic, Google, AWS Bedrock, Azure OpenAI, Cohere and Mistral models. Tracked records live in the configured storage
backend (memory, JSON file, SQLite or Redis).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := cli.SetupSignalHandler()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, csv")
}

// loadConfig resolves the configuration for a command run.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NewConfigError("", err.Error())
		}
	}

	cfg, err := config.LoadWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}

	// Without a config file the in-memory default would lose every record
	// when the process exits.
	if path == "" && cfg.Storage.Backend == config.DefaultStorageBackend {
		cfg.Storage.Backend = "file"
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	} else {
		cfg.Telemetry.Logging.Level = "warn"
	}
	cfg.Telemetry.Logging.Format = "text"
	return cfg, nil
}

// openClient builds a client from the resolved configuration. Logs go to
// stderr so stdout carries only command output.
func openClient(cmd *cobra.Command, opts ...costkatana.Option) (*costkatana.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		Prefix:        cfg.Telemetry.Logging.Prefix,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	client, err := costkatana.New(cfg, append([]costkatana.Option{costkatana.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, cli.NewCommandError(cmd.Name(), err)
	}
	return client, nil
}

// render writes data in the --output format.
func render(w io.Writer, data any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}
	return cli.NewFormatter(format).FormatTo(w, data)
}
