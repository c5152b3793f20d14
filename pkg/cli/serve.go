package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.outcomes/pkg/consumer"
	"digital.vasic.outcomes/pkg/logging"
	"digital.vasic.outcomes/pkg/monitor"
	"digital.vasic.outcomes/pkg/oauth"
)

// NewServeCmd creates the serve command.
func NewServeCmd(opts *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local consumer endpoint with a live monitor",
		Long: `Run an in-memory gradebook that accepts outcome requests signed with the
configured consumer key and secret. Accepted submissions are streamed on the
/events websocket; /dashboard and /stats return JSON snapshots.

Examples:
  outcomes serve --config outcomes.yaml
  OUTCOMES_MONITOR_ADDR=127.0.0.1:9000 outcomes serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, mon, err := newServeServer(s, path)
			if err != nil {
				return err
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mon.Stop(shutdownCtx)
				_ = srv.Shutdown(shutdownCtx)
			}()

			labelColor.Fprint(cmd.OutOrStdout(), "listening: ")
			fmt.Fprintf(cmd.OutOrStdout(), "http://%s%s\n", s.cfg.Monitor.Addr, path)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "/outcomes", "Path of the outcome endpoint")
	return cmd
}

// newServeServer wires the consumer handler and monitor routes
// onto one server.
func newServeServer(s *session, path string) (*http.Server, *monitor.Server, error) {
	collector := monitor.NewEventCollector()
	mon := monitor.NewServer(s.cfg.Monitor.Addr, collector, monitor.NewDashboardData(),
		monitor.WithServerLogger(s.logger))

	handler, err := consumer.NewOutcomeHandler(
		oauth.StaticSecrets(map[string]string{s.cfg.Consumer.Key: s.cfg.Consumer.Secret}),
		consumer.NewMemoryGradebook(),
		consumer.WithHandlerLogger(s.logger),
		consumer.WithHandlerObserver(collector),
	)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	mux.Handle("/", mon.Handler())

	s.logger.Info("consumer endpoint ready",
		logging.StringField("addr", s.cfg.Monitor.Addr),
		logging.StringField("path", path),
	)
	return &http.Server{
		Addr:              s.cfg.Monitor.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, mon, nil
}
