package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/roach88/flaggraph/internal/api"
	"github.com/roach88/flaggraph/internal/config"
	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/metrics"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string // Overrides the config file's listen address when set
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flag API over HTTP",
		Long: `Serve the flag API over HTTP until interrupted.

Routes:
  POST /flags                            create a flag
  POST /flags/:name/toggle?enable=bool   enable or disable a flag
  GET  /flags                            list flags
  GET  /flags/:name                      flag status
  GET  /flags/:name/history              audit history
  GET  /healthz                          liveness
  GET  /metrics                          Prometheus metrics

The acting identity is taken from the X-Actor header. Create and toggle
requests are rate limited when mutation_rate_limit is set in the config.

Example:
  flaggraph serve --db ./flags.db --listen :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "HTTP listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(reg)

	sess, err := openSession(cmd, opts.RootOptions, engine.WithObserver(collector))
	if err != nil {
		return err
	}
	defer sess.Close()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, sess.engine, collector, reg)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", cfg.Listen, "db", cfg.Database)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}

// newRouter wires the HTTP layer: rate limiting from the config, request
// metrics and the metrics endpoint.
func newRouter(cfg config.Config, svc api.Service, collector *metrics.Collector, gatherer prometheus.Gatherer) *gin.Engine {
	routerOpts := api.RouterOptions{
		Observer: collector,
		Gatherer: gatherer,
	}
	if cfg.MutationRateLimit > 0 {
		routerOpts.Limiter = rate.NewLimiter(rate.Limit(cfg.MutationRateLimit), cfg.MutationBurst)
	}
	return api.NewRouter(api.NewHandlers(svc), routerOpts)
}
