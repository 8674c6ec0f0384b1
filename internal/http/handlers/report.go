package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-tutor/internal/http/response"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

type ReportHandler struct {
	log     *logger.Logger
	reports services.ReportService
	metrics services.MetricsService
}

func NewReportHandler(log *logger.Logger, reports services.ReportService, metrics services.MetricsService) *ReportHandler {
	return &ReportHandler{log: log.With("handler", "ReportHandler"), reports: reports, metrics: metrics}
}

// GET /api/tutor/report/ability?subject=...
func (h *ReportHandler) Ability(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	rep, err := h.reports.Ability(c.Request.Context(), learnerID, c.Query("subject"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ability": rep})
}

// GET /api/tutor/report/topics
func (h *ReportHandler) Topics(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	reps, err := h.reports.TopicMetrics(c.Request.Context(), learnerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": reps})
}

// POST /api/tutor/metrics/recalculate
func (h *ReportHandler) RecalculateMine(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	res, err := h.metrics.Recalculate(c.Request.Context(), &learnerID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}
