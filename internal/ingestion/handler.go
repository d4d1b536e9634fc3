package ingestion

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/pagination"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the ingestion service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches ingestion routes to the authenticated group.
// Triggering is limited to editors and admins; status reads are open to
// every authenticated role, scoped by the service.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ingestion", h.list)
	rg.GET("/ingestion/:id", h.getOne)

	// The :id segment carries a document id here; gin requires one wildcard
	// name per path position.
	editors := rg.Group("", middleware.RequireRoles(policy.RoleAdmin, policy.RoleEditor))
	editors.POST("/ingestion/:id/trigger", h.trigger)
}

func (h *Handler) trigger(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	proc, err := h.Svc.Trigger(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.Created(c, toResponse(proc))
}

func (h *Handler) list(c *gin.Context) {
	page := parsePositive(c.Query("page"), pagination.DefaultPage)
	limit := parsePositive(c.Query("limit"), pagination.DefaultLimit)

	var status Status
	if raw := c.Query("status"); raw != "" {
		status = Status(raw)
		switch status {
		case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("unknown status %q", raw), nil)
			return
		}
	}

	actor := middleware.ActorFromContext(c)
	procs, total, pages, err := h.Svc.List(c.Request.Context(), actor, page, limit, status)
	if err != nil {
		respond.Domain(c, err)
		return
	}

	out := make([]ProcessResponse, 0, len(procs))
	for _, proc := range procs {
		out = append(out, toResponse(proc))
	}
	respond.OK(c, ListResponse{Processes: out, Total: total, Pages: pages})
}

func (h *Handler) getOne(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	proc, err := h.Svc.GetOne(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, toResponse(proc))
}

func parsePositive(raw string, def int) int {
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return def
	}
	return parsed
}
