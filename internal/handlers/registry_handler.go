package handler

import (
	"bytes"
	"errors"
	"net/http"

	"claims-payment-backend/internal/models"
	"claims-payment-backend/internal/services/registry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegistryHandler struct {
	service *registry.RegistryService
	log     *zap.Logger
}

func NewRegistryHandler(s *registry.RegistryService, log *zap.Logger) *RegistryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistryHandler{service: s, log: log}
}

func (h *RegistryHandler) CreateProvider(c *gin.Context) {
	var payload models.ProviderRecord
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	payload.ID = uuid.Nil

	if err := h.service.RegisterProvider(c.Request.Context(), &payload); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "hospital registered", "provider": payload})
}

func (h *RegistryHandler) ListProviders(c *gin.Context) {
	providers, err := h.service.ListProviders(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": providers, "count": len(providers)})
}

func (h *RegistryHandler) DeleteProvider(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteProvider(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "hospital deleted"})
}

func (h *RegistryHandler) ExportProviders(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportProviders(c.Request.Context(), &buf); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="hospitals.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *RegistryHandler) CreateBatch(c *gin.Context) {
	var payload models.BatchRecord
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	payload.ID = uuid.Nil

	if err := h.service.RegisterBatch(c.Request.Context(), &payload); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "batch registered", "batch": payload})
}

func (h *RegistryHandler) ListBatches(c *gin.Context) {
	batches, err := h.service.ListBatches(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": batches, "count": len(batches)})
}

func (h *RegistryHandler) DeleteBatch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBatch(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "batch deleted"})
}

func (h *RegistryHandler) ExportBatches(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportBatches(c.Request.Context(), &buf); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="batches.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *RegistryHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrDuplicateProvider), errors.Is(err, registry.ErrDuplicateBatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrInvalidProvider), errors.Is(err, registry.ErrInvalidBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
