// Package api exposes the worklog service over HTTP for the UI.
package api

import (
	"context"
	"expvar"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"worklog/internal/analytics"
	"worklog/internal/blob"
	"worklog/internal/core"
	"worklog/internal/export"
)

// Service is the application surface the handlers drive.
type Service interface {
	Schema() core.Schema
	ResetSchema(ctx context.Context) (core.Schema, error)
	Propose(ctx context.Context, key core.FlowKey, raw string, group core.TechGroup) (core.Outcome, error)
	Resolve(ctx context.Context, key core.FlowKey, decision core.Decision) (core.Outcome, error)
	Pending() []core.PendingDecision
	Remove(ctx context.Context, target core.Target, name string) (core.RemoveResult, error)
	InUse(target core.Target, name string) bool
	Entries() []core.Entry
	Preferences() *core.Preferences
	LogTasks(ctx context.Context, in core.LogInput) ([]core.Entry, error)
	ClearData(ctx context.Context) error
	Dashboard(filter analytics.Filter) analytics.Dashboard
	LastSave() (core.SaveResult, bool)
}

// Exporter stores and serves export artifacts.
type Exporter interface {
	ExportEntries(ctx context.Context, entries []core.Entry) (export.Artifact, error)
	ExportSchema(ctx context.Context, schema core.Schema) (export.Artifact, error)
	List(ctx context.Context) ([]blob.Info, error)
	Open(ctx context.Context, key string) (blob.Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// RouterConfig wires the router. Only Service is required.
type RouterConfig struct {
	Service        Service
	Exporter       Exporter
	Logger         core.Logger
	Metrics        *HTTPMetrics
	MetricsHandler http.Handler
	TracerProvider trace.TracerProvider
	AllowOrigins   []string
}

// NewRouter builds the gin engine serving /api/v1 plus health, metrics, and
// expvar endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.TracerProvider != nil {
		router.Use(otelgin.Middleware("worklog", otelgin.WithTracerProvider(cfg.TracerProvider)))
	}
	router.Use(cfg.Metrics.Middleware())
	router.Use(RequestLogger(cfg.Logger))
	router.Use(CORS(cfg.AllowOrigins))

	h := &handler{svc: cfg.Service, exports: cfg.Exporter}

	router.GET("/healthcheck", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	router.GET("/debug/vars", gin.WrapH(expvar.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/schema", h.getSchema)
		v1.POST("/schema/reset", h.resetSchema)
		v1.GET("/groups", h.listGroups)

		v1.POST("/taxonomy/:kind", h.propose)
		v1.DELETE("/taxonomy/:kind", h.remove)
		v1.GET("/taxonomy/:kind/usage", h.usage)

		v1.GET("/resolutions", h.listPending)
		v1.POST("/resolutions/:decision", h.resolve)

		v1.GET("/entries", h.listEntries)
		v1.POST("/entries", h.logTasks)
		v1.GET("/preferences", h.getPreferences)
		v1.POST("/data/clear", h.clearData)

		v1.GET("/dashboard", h.dashboard)

		v1.POST("/exports/entries", h.exportEntries)
		v1.POST("/exports/schema", h.exportSchema)
		v1.GET("/exports", h.listExports)
		v1.GET("/exports/file", h.downloadExport)
		v1.DELETE("/exports/file", h.deleteExport)

		v1.GET("/persistence", h.persistence)
	}
	return router
}
