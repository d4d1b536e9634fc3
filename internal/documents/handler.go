package documents

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docvault-backend/internal/policy"
	"docvault-backend/internal/shared/pagination"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/shared/util"
)

const maxUploadSize = 10 << 20 // 10 MiB

// allowedExtensions is the fixed upload allow-list enforced at the transport
// boundary, before the core ever sees the file.
var allowedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".pdf": {}, ".doc": {}, ".docx": {},
	".txt": {}, ".csv": {}, ".xlsx": {},
}

// Handler wires HTTP handlers to the document lifecycle service.
type Handler struct {
	Svc   *Service
	Store object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, store object.ObjectStore) *Handler {
	return &Handler{Svc: svc, Store: store}
}

// RegisterRoutes attaches document routes to the authenticated group.
// Update and delete get a coarse editor/admin pre-filter; ownership checks
// stay with the service.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/stats", h.stats)
	rg.GET("/documents/:id", h.getOne)
	rg.GET("/documents/:id/download", h.download)

	editors := rg.Group("", middleware.RequireRoles(policy.RoleAdmin, policy.RoleEditor))
	editors.PATCH("/documents/:id", h.update)
	editors.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required and must not exceed 10 MiB", nil)
		return
	}

	originalName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("file type %q is not allowed", ext), nil)
		return
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if len(description) > 500 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "description must be at most 500 characters", nil)
		return
	}
	var metadata map[string]any
	if raw := strings.TrimSpace(c.PostForm("metadata")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "metadata must be a JSON object", nil)
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	// Stored name mirrors the original with a random suffix so repeated
	// uploads of the same file never collide.
	stem := strings.TrimSuffix(originalName, ext)
	storedName := fmt.Sprintf("%s-%s%s", stem, uuid.NewString(), ext)
	storageKey := util.UserPrefix(actor.ID) + "/" + storedName

	size, mimeType, err := h.Store.Save(c.Request.Context(), storageKey, file)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to store file", nil)
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), actor, FileRef{
		Filename:     storedName,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    size,
		StorageKey:   storageKey,
	}, description, metadata)
	if err != nil {
		respond.Domain(c, err)
		return
	}

	respond.Created(c, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	page := parsePositive(c.Query("page"), pagination.DefaultPage)
	limit := parsePositive(c.Query("limit"), pagination.DefaultLimit)

	var status Status
	if raw := c.Query("status"); raw != "" {
		status = Status(raw)
		if !status.Valid() {
			respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("unknown status %q", raw), nil)
			return
		}
	}

	actor := middleware.ActorFromContext(c)
	docs, total, pages, err := h.Svc.List(c.Request.Context(), actor, page, limit, status)
	if err != nil {
		respond.Domain(c, err)
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	respond.OK(c, ListResponse{Documents: out, Total: total, Pages: pages})
}

func (h *Handler) stats(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	stats, err := h.Svc.GetStats(c.Request.Context(), actor)
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, stats)
}

func (h *Handler) getOne(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	doc, err := h.Svc.GetOne(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) download(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	doc, reader, err := h.Svc.Download(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Domain(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	c.Header("Content-Type", doc.MimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already sent; nothing left to do but abort.
		c.Abort()
	}
}

func (h *Handler) update(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	patch := UpdatePatch{
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		patch.Status = &status
	}

	actor := middleware.ActorFromContext(c)
	doc, err := h.Svc.Update(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		respond.Domain(c, err)
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if err := h.Svc.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respond.Domain(c, err)
		return
	}
	respond.NoContent(c)
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
