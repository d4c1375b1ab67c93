package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/storage"
)

type ReportHandler struct {
	repo *storage.ReportRepo
}

func NewReportHandler(repo *storage.ReportRepo) *ReportHandler {
	return &ReportHandler{repo: repo}
}

// GetByCallID returns the latest report for a call.
func (h *ReportHandler) GetByCallID(c *gin.Context) {
	callID := c.Param("call_id")

	report, err := h.repo.GetLatestByCallID(c.Request.Context(), callID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve report"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report for call"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Stats returns aggregate pass/fail numbers, optionally scoped to a project.
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context(), c.Query("project"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
