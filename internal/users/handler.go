package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/pagination"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the user-administration service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches user-administration routes. The whole group is
// admin-only at the routing layer; the service re-checks the policy.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/users", middleware.RequireRoles(policy.RoleAdmin))
	admin.POST("", h.create)
	admin.GET("", h.list)
	admin.PATCH("/:id", h.update)
	admin.PATCH("/:id/role", h.updateRole)
	admin.PATCH("/:id/activate", h.activate)
	admin.PATCH("/:id/deactivate", h.deactivate)
	admin.DELETE("/:id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.Svc.Create(c.Request.Context(), actor, CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      policy.Role(req.Role),
	})
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.Created(c, ToResponse(user))
}

func (h *Handler) list(c *gin.Context) {
	page := parsePositive(c.Query("page"), pagination.DefaultPage)
	limit := parsePositive(c.Query("limit"), pagination.DefaultLimit)

	actor := middleware.ActorFromContext(c)
	list, total, pages, err := h.Svc.List(c.Request.Context(), actor, page, limit)
	if err != nil {
		respond.Domain(c, err)
		return
	}

	out := make([]UserResponse, 0, len(list))
	for _, user := range list {
		out = append(out, ToResponse(user))
	}
	respond.OK(c, ListResponse{Users: out, Total: total, Pages: pages})
}

func (h *Handler) update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.Svc.Update(c.Request.Context(), actor, c.Param("id"), UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, ToResponse(user))
}

func (h *Handler) updateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	actor := middleware.ActorFromContext(c)
	user, err := h.Svc.UpdateRole(c.Request.Context(), actor, c.Param("id"), policy.Role(req.Role))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, ToResponse(user))
}

func (h *Handler) activate(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	user, err := h.Svc.Activate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, ToResponse(user))
}

func (h *Handler) deactivate(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	user, err := h.Svc.Deactivate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, ToResponse(user))
}

func (h *Handler) remove(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if err := h.Svc.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respond.Domain(c, err)
		return
	}
	respond.NoContent(c)
}

// parsePositive coerces a query value to a positive integer with a default.
// The coercion is deliberate: services and repos keep permissive pass-through
// semantics and only the transport normalizes degenerate values.
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
