// Package api serves the flag engine over HTTP.
//
// Routes:
//
//	POST /flags                          create a flag
//	POST /flags/:name/toggle?enable=bool enable or disable a flag
//	GET  /flags                          list flags with dependencies
//	GET  /flags/:name                    flag status
//	GET  /flags/:name/history            audit history, newest first
//	GET  /healthz                        liveness
//	GET  /metrics                        Prometheus metrics
//
// The acting identity is read from the X-Actor header. Without it the
// engine records its default actors.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/flaggraph/internal/model"
)

// ActorHeader carries the acting identity.
const ActorHeader = "X-Actor"

// Service is the slice of the engine the handlers call.
// Satisfied by *engine.Engine.
type Service interface {
	CreateFlag(ctx context.Context, name string, dependsOn []string, actor string) (model.Flag, error)
	ToggleFlag(ctx context.Context, name string, enable bool, actor string) (model.Flag, error)
	Status(ctx context.Context, name string) (model.Status, error)
	History(ctx context.Context, name string) ([]model.AuditRecord, error)
	ListFlags(ctx context.Context) ([]model.FlagView, error)
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	svc Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc Service) *Handlers {
	registerValidators()
	return &Handlers{svc: svc}
}

// HandleCreate handles POST /flags.
func (h *Handlers) HandleCreate(c *gin.Context) {
	var req CreateFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	flag, err := h.svc.CreateFlag(c.Request.Context(), req.Name, req.Dependencies, c.GetHeader(ActorHeader))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flag)
}

// HandleToggle handles POST /flags/:name/toggle?enable=true|false.
func (h *Handlers) HandleToggle(c *gin.Context) {
	var q ToggleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	name := c.Param("name")
	flag, err := h.svc.ToggleFlag(c.Request.Context(), name, *q.Enable, c.GetHeader(ActorHeader))
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Debug("toggle handled", "flag", name, "enable", *q.Enable)
	c.JSON(http.StatusOK, flag)
}

// HandleStatus handles GET /flags/:name.
func (h *Handlers) HandleStatus(c *gin.Context) {
	status, err := h.svc.Status(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// HandleHistory handles GET /flags/:name/history.
func (h *Handlers) HandleHistory(c *gin.Context) {
	name := c.Param("name")
	records, err := h.svc.History(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []model.AuditRecord{}
	}
	c.JSON(http.StatusOK, HistoryResponse{Flag: model.NormalizeName(name), Records: records})
}

// HandleList handles GET /flags.
func (h *Handlers) HandleList(c *gin.Context) {
	views, err := h.svc.ListFlags(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Flags: views})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
