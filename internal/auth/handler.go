package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
	"docvault-backend/internal/users"
)

// Handler wires HTTP handlers to the auth service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches the unauthenticated auth endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

// RegisterProtectedRoutes attaches the endpoints behind the auth middleware.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/profile", h.profile)
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, token, err := h.Svc.Register(c.Request.Context(), RegisterInput{
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
	respond.Created(c, tokenResponse{User: users.ToResponse(user), Token: token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, tokenResponse{User: users.ToResponse(user), Token: token})
}

func (h *Handler) profile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	user, err := h.Svc.Profile(c.Request.Context(), actor.ID)
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, users.ToResponse(user))
}
