package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"worklog/internal/analytics"
	"worklog/internal/core"
	"worklog/pkg/domain"
)

type handler struct {
	svc     Service
	exports Exporter
}

type groupView struct {
	ID    domain.TechGroup `json:"id"`
	Label string           `json:"label"`
}

type proposeRequest struct {
	Name       string           `json:"name"`
	Group      domain.TechGroup `json:"group,omitempty"`
	Technology string           `json:"technology,omitempty"`
	Context    string           `json:"context,omitempty"`
}

type resolveRequest struct {
	Kind       string `json:"kind"`
	Technology string `json:"technology,omitempty"`
	Context    string `json:"context,omitempty"`
}

type outcomeResponse struct {
	Outcome core.Outcome `json:"outcome"`
	Schema  core.Schema  `json:"schema"`
}

func parseTarget(kind, technology string) (domain.Target, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return domain.Target{}, err
	}
	target := domain.Target{Kind: k}
	if k == domain.KindSubTech {
		target.Technology = technology
	}
	if err := target.Validate(); err != nil {
		return domain.Target{}, err
	}
	return target, nil
}

func (h *handler) getSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Schema())
}

func (h *handler) resetSchema(c *gin.Context) {
	schema, err := h.svc.ResetSchema(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

func (h *handler) listGroups(c *gin.Context) {
	groups := domain.TechGroups()
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupView{ID: g, Label: g.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

func (h *handler) propose(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	target, err := parseTarget(c.Param("kind"), req.Technology)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_target", err)
		return
	}
	out, err := h.svc.Propose(c.Request.Context(), core.FlowKey{Target: target, Context: req.Context}, req.Name, req.Group)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomeResponse{Outcome: out, Schema: out.Schema})
}

// itemQuery reads the kind path segment plus the name and technology query
// parameters. Names travel in the query so values such as "CI/CD" survive.
func itemQuery(c *gin.Context) (domain.Target, string, bool) {
	target, err := parseTarget(c.Param("kind"), c.Query("technology"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_target", err)
		return domain.Target{}, "", false
	}
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		respondError(c, http.StatusBadRequest, "invalid_name", errMissingName)
		return domain.Target{}, "", false
	}
	return target, name, true
}

var errMissingName = errors.New("name query parameter is required")

func (h *handler) remove(c *gin.Context) {
	target, name, ok := itemQuery(c)
	if !ok {
		return
	}
	res, err := h.svc.Remove(c.Request.Context(), target, name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) usage(c *gin.Context) {
	target, name, ok := itemQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_use": h.svc.InUse(target, name)})
}

func (h *handler) listPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": h.svc.Pending()})
}

func (h *handler) resolve(c *gin.Context) {
	decision, err := core.ParseDecision(c.Param("decision"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_decision", err)
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	target, err := parseTarget(req.Kind, req.Technology)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_target", err)
		return
	}
	out, err := h.svc.Resolve(c.Request.Context(), core.FlowKey{Target: target, Context: req.Context}, decision)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomeResponse{Outcome: out, Schema: out.Schema})
}

func (h *handler) listEntries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.svc.Entries()})
}

func (h *handler) logTasks(c *gin.Context) {
	var in core.LogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.svc.LogTasks(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entries": created})
}

func (h *handler) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"preferences": h.svc.Preferences()})
}

func (h *handler) clearData(c *gin.Context) {
	if err := h.svc.ClearData(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) dashboard(c *gin.Context) {
	r, err := analytics.ParseRange(c.Query("range"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_range", err)
		return
	}
	filter := analytics.Filter{Range: r, Project: c.Query("project"), Category: c.Query("category")}
	c.JSON(http.StatusOK, h.svc.Dashboard(filter))
}

var errExportsDisabled = errors.New("exports are not configured")

func (h *handler) exportEntries(c *gin.Context) {
	if h.exports == nil {
		respondError(c, http.StatusNotFound, "exports_disabled", errExportsDisabled)
		return
	}
	art, err := h.exports.ExportEntries(c.Request.Context(), h.svc.Entries())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, art)
}

func (h *handler) exportSchema(c *gin.Context) {
	if h.exports == nil {
		respondError(c, http.StatusNotFound, "exports_disabled", errExportsDisabled)
		return
	}
	art, err := h.exports.ExportSchema(c.Request.Context(), h.svc.Schema())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, art)
}

func (h *handler) listExports(c *gin.Context) {
	if h.exports == nil {
		respondError(c, http.StatusNotFound, "exports_disabled", errExportsDisabled)
		return
	}
	infos, err := h.exports.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": infos})
}

func (h *handler) downloadExport(c *gin.Context) {
	if h.exports == nil {
		respondError(c, http.StatusNotFound, "exports_disabled", errExportsDisabled)
		return
	}
	info, rc, err := h.exports.Open(c.Request.Context(), c.Query("key"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer func() { _ = rc.Close() }()
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *handler) deleteExport(c *gin.Context) {
	if h.exports == nil {
		respondError(c, http.StatusNotFound, "exports_disabled", errExportsDisabled)
		return
	}
	deleted, err := h.exports.Delete(c.Request.Context(), c.Query("key"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *handler) persistence(c *gin.Context) {
	res, ok := h.svc.LastSave()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"last_save": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_save": res})
}
