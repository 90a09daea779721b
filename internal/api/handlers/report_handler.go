package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/report"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
	"github.com/andresuchdata/ordena/backend-go/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	profits *service.ProfitabilityService
	archive storage.ObjectStorage
}

// NewReportHandler builds the export handler. archive may be nil, in which
// case workbooks are served but never archived.
func NewReportHandler(profits *service.ProfitabilityService, archive storage.ObjectStorage) *ReportHandler {
	return &ReportHandler{profits: profits, archive: archive}
}

// ExportProfitability renders the profitability report as an XLSX download
// and, when an archive backend is configured, keeps a copy in the bucket.
func (h *ReportHandler) ExportProfitability(c *gin.Context) {
	window, err := parseReportWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	businessID := c.Param("business_id")
	result, err := h.profits.Report(c.Request.Context(), businessID, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := report.WriteXLSX(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fileName := report.FileName(businessID, result.GeneratedAt)
	if h.archive != nil {
		key := businessID + "/" + fileName
		if err := h.archive.UploadObject(c.Request.Context(), key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive report")
		}
	}

	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, xlsxContentType, data)
}
