package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"digital.vasic.outcomes/pkg/logging"
	"digital.vasic.outcomes/pkg/metrics"
	"digital.vasic.outcomes/pkg/outcome"
	"digital.vasic.outcomes/pkg/outcomedata"
	"digital.vasic.outcomes/pkg/provider"
	"digital.vasic.outcomes/pkg/transport"
)

func (s *session) provider(m metrics.OutcomeMetrics) (*provider.ToolProvider, error) {
	t := transport.New(s.cfg.Consumer.Key, s.cfg.Consumer.Secret,
		transport.WithTimeout(s.cfg.Timeout),
		transport.WithLogger(s.logger),
	)
	p, err := provider.New(s.cfg.Launch(), s.cfg.Consumer.Key, s.cfg.Consumer.Secret,
		provider.WithTransport(t),
		provider.WithServiceOptions(
			outcome.WithLogger(s.logger),
			outcome.WithMetrics(m),
		),
	)
	if err != nil {
		return nil, err
	}
	if !p.IsOutcomeService() {
		return nil, fmt.Errorf("%w: set outcome.service_url and outcome.sourcedid", provider.ErrNoOutcomeService)
	}
	return p, nil
}

// NewReplaceCmd creates the replace command.
func NewReplaceCmd(opts *rootOptions) *cobra.Command {
	data := map[string]*string{}
	var needsGrading bool

	cmd := &cobra.Command{
		Use:   "replace <score>",
		Short: "Send a score between 0.0 and 1.0 with optional result data",
		Long: `Send a replaceResult request. Result data flags are sent whether or not the
consumer advertised them; a warning is printed for fields it did not list.

Examples:
  outcomes replace 0.85 --config outcomes.yaml
  outcomes replace 1 --text "well done" --url https://example.com/work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", args[0], err)
			}

			values := map[string]string{}
			for key, v := range data {
				if cmd.Flags().Changed(flagName(key)) {
					values[key] = *v
				}
			}
			if cmd.Flags().Changed("needs-grading") {
				values[outcomedata.KeyNeedsGrading] = strconv.FormatBool(needsGrading)
			}

			return opts.run(cmd, outcome.OpReplaceResult, func(ctx context.Context, p *provider.ToolProvider, out io.Writer) (*outcome.Response, error) {
				warnUnadvertised(out, p, values)
				return p.PostReplaceResultWithData(ctx, score, values)
			})
		},
	}

	for _, key := range []string{
		outcomedata.KeyText,
		outcomedata.KeyCDATAText,
		outcomedata.KeyURL,
		outcomedata.KeyStatusOfResult,
		outcomedata.KeyDate,
	} {
		data[key] = cmd.Flags().String(flagName(key), "", "Result data "+key)
	}
	cmd.Flags().BoolVar(&needsGrading, "needs-grading", false, "Flag the result for manual grading")

	return cmd
}

// NewReadCmd creates the read command.
func NewReadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Read the score stored by the consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, outcome.OpReadResult, func(ctx context.Context, p *provider.ToolProvider, _ io.Writer) (*outcome.Response, error) {
				return p.PostReadResult(ctx)
			})
		},
	}
}

// NewDeleteCmd creates the delete command.
func NewDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the score stored by the consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, outcome.OpDeleteResult, func(ctx context.Context, p *provider.ToolProvider, _ io.Writer) (*outcome.Response, error) {
				return p.PostDeleteResult(ctx)
			})
		},
	}
}

type postFunc func(ctx context.Context, p *provider.ToolProvider, out io.Writer) (*outcome.Response, error)

func (o *rootOptions) run(cmd *cobra.Command, op outcome.Operation, post postFunc) error {
	s, err := o.open(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	m := metrics.NewCounterMetrics()
	p, err := s.provider(m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	resp, err := post(cmd.Context(), p, out)
	if resp != nil {
		printResponse(out, resp)
	}
	if err != nil {
		return err
	}
	s.logger.Debug("submission finished",
		logging.DurationMsField("median_ms", m.MedianLatency(string(op)).Milliseconds()),
	)
	if !resp.Success() {
		return fmt.Errorf("consumer replied %s", resp.Status)
	}
	return nil
}

// flagName maps a result data key onto its flag spelling.
func flagName(key string) string {
	switch key {
	case outcomedata.KeyCDATAText:
		return "cdata-text"
	case outcomedata.KeyStatusOfResult:
		return "status-of-result"
	default:
		return key
	}
}
