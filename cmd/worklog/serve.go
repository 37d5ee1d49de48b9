package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"worklog/internal/adapters/api"
	"worklog/internal/blob"
	"worklog/internal/core"
	"worklog/internal/export"
)

const shutdownTimeout = 10 * time.Second

// observability bundles the collectors shared by the service and the router.
type observability struct {
	registry *prometheus.Registry
	recorder core.MetricsRecorder
	http     *api.HTTPMetrics
	provider *sdktrace.TracerProvider
	tracer   core.Tracer
}

func newObservability(traceFile *os.File) (*observability, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return nil, err
	}
	httpMetrics, err := api.NewHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	ev := core.NewExpvarMetricsRecorder("")
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	var tracer core.Tracer = core.NewOTelTracer(tp)
	if traceFile != nil {
		tracer = core.NewJSONTracer(traceFile)
	}
	return &observability{
		registry: reg,
		recorder: core.MultiMetricsRecorder(prom, ev),
		http:     httpMetrics,
		provider: tp,
		tracer:   tracer,
	}, nil
}

func (o *observability) serviceOptions() []core.Option {
	return []core.Option{core.WithMetricsRecorder(o.recorder), core.WithTracer(o.tracer)}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var traceFile *os.File
	if path, _ := cmd.Flags().GetString("trace-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = f.Close() }()
		traceFile = f
	}
	obs, err := newObservability(traceFile)
	if err != nil {
		return err
	}
	defer func() { _ = obs.provider.Shutdown(context.Background()) }()

	s, err := openSession(cmd, obs.serviceOptions()...)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.close(shutdownCtx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close: %v\n", err)
		}
	}()

	handler, err := newHandler(ctx, s, obs)
	if err != nil {
		return err
	}
	addr := s.cfg.HTTP.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("worklog listening", "addr", addr, "storage", s.cfg.Storage.Driver, "blob", s.cfg.Blob.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHandler(ctx context.Context, s *session, obs *observability) (http.Handler, error) {
	store, err := blob.Open(ctx, s.cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return api.NewRouter(api.RouterConfig{
		Service:        s.svc,
		Exporter:       export.NewExporter(store),
		Logger:         s.log,
		Metrics:        obs.http,
		MetricsHandler: promhttp.HandlerFor(obs.registry, promhttp.HandlerOpts{}),
		TracerProvider: obs.provider,
		AllowOrigins:   s.cfg.HTTP.AllowOrigins,
	}), nil
}

func uploadExport(cmd *cobra.Command, s *session, kind export.Kind) error {
	store, err := blob.Open(cmd.Context(), s.cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	exporter := export.NewExporter(store)
	var art export.Artifact
	if kind == export.KindEntries {
		art, err = exporter.ExportEntries(cmd.Context(), s.svc.Entries())
	} else {
		art, err = exporter.ExportSchema(cmd.Context(), s.svc.Schema())
	}
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), art)
}
