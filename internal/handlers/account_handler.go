package handler

import (
	"bytes"
	"errors"
	"net/http"

	"claims-payment-backend/internal/identity"
	"claims-payment-backend/internal/receipt"
	"claims-payment-backend/internal/services/account"
	"claims-payment-backend/internal/services/upload"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AccountHandler struct {
	service *account.AccountService
	log     *zap.Logger
}

func NewAccountHandler(s *account.AccountService, log *zap.Logger) *AccountHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountHandler{service: s, log: log}
}

// Upload checks the file structure synchronously, then processes rows in
// the background and answers with the job id.
func (h *AccountHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	who := identity.FromContext(c)
	h.log.Info("Received payment file",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("uploaded_by", who.Email),
	)

	rows, err := h.service.ParseUpload(c.Request.Context(), header.Filename, file)
	if err != nil {
		var missing *upload.MissingColumnsError
		switch {
		case errors.As(err, &missing):
			c.JSON(http.StatusBadRequest, gin.H{"error": missing.Error(), "missing": missing.Missing})
		case errors.Is(err, upload.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Warn("Cannot read payment file", zap.String("filename", header.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file: " + err.Error()})
		}
		return
	}

	job, err := h.service.CreateUploadJob(c.Request.Context(), who, header.Filename, len(rows))
	if err != nil {
		h.log.Error("Failed to create upload job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.service.StartUpload(job, who, rows)

	c.JSON(http.StatusAccepted, gin.H{
		"upload_id":  job.ID.String(),
		"status":     job.Status,
		"total_rows": job.TotalRows,
	})
}

func (h *AccountHandler) GetUpload(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	status, err := h.service.GetUploadStatus(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upload_id":       status.Job.ID,
		"filename":        status.Job.Filename,
		"status":          status.Job.Status,
		"progress":        status.Progress,
		"total_rows":      status.Job.TotalRows,
		"processed_count": status.Job.ProcessedCount,
		"inserted_count":  status.Job.InsertedCount,
		"rejected_count":  status.Job.RejectedCount,
		"message":         status.Job.Message,
		"errors":          status.Job.Errors,
		"completed_at":    status.Job.CompletedAt,
	})
}

func (h *AccountHandler) List(c *gin.Context) {
	payments, err := h.service.ListPayments(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": payments, "count": len(payments)})
}

func (h *AccountHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePayment(c.Request.Context(), identity.FromContext(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment deleted"})
}

func (h *AccountHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, pdf, err := h.service.Receipt(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+receipt.Filename(p)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *AccountHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportPayments(c.Request.Context(), &buf); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="payments.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *AccountHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, account.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}
