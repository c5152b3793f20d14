// Package cli implements the outcomes command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"digital.vasic.outcomes/pkg/config"
	"digital.vasic.outcomes/pkg/logging"
)

type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

// NewRootCmd creates the root outcomes command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "outcomes",
		Short: "Report LTI outcomes with optional result data",
		Long: `outcomes posts replaceResult, readResult and deleteResult requests to an
LTI 1.1 outcome service, optionally carrying result data (text, URL,
needs-grading flag, status and date), and can run a local consumer
endpoint with a live submission monitor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file with OUTCOMES_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log request and reply envelopes")

	// Add subcommands
	rootCmd.AddCommand(NewReplaceCmd(opts))
	rootCmd.AddCommand(NewReadCmd(opts))
	rootCmd.AddCommand(NewDeleteCmd(opts))
	rootCmd.AddCommand(NewCapabilitiesCmd(opts))
	rootCmd.AddCommand(NewServeCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// session is the loaded configuration and logger for one command.
type session struct {
	cfg    *config.Config
	logger logging.Logger
}

func (o *rootOptions) open(errOut io.Writer) (*session, error) {
	cfg, err := config.LoadAll(o.configPath, o.envFile)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Logging.Verbose = true
	}

	var logger logging.Logger
	if cfg.Logging.Dir != "" {
		jl, err := logging.SetupLogging(cfg.Logging.Dir, cfg.LogLevel())
		if err != nil {
			return nil, fmt.Errorf("setup logging: %w", err)
		}
		logger = jl
	} else {
		logger = logging.NewConsoleWriterLogger(errOut, cfg.Logging.Verbose)
	}

	return &session{
		cfg:    cfg,
		logger: logging.NewRedactingLogger(logger, cfg.Consumer.Secret),
	}, nil
}

func (s *session) Close() error {
	return s.logger.Close()
}
