package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-tutor/internal/http/response"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

const maxCatalogBytes = 4 << 20

type AdminHandler struct {
	log     *logger.Logger
	metrics services.MetricsService
	catalog services.TopicCatalogService
}

func NewAdminHandler(log *logger.Logger, metrics services.MetricsService, catalog services.TopicCatalogService) *AdminHandler {
	return &AdminHandler{log: log.With("handler", "AdminHandler"), metrics: metrics, catalog: catalog}
}

// POST /api/admin/metrics/recalculate
func (h *AdminHandler) RecalculateAll(c *gin.Context) {
	res, err := h.metrics.Recalculate(c.Request.Context(), nil)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"result": res})
}

// POST /api/admin/topics/sync with a YAML topic tree as the body.
func (h *AdminHandler) SyncTopics(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCatalogBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(raw) == 0 {
		response.RespondError(c, http.StatusBadRequest, "empty_body", errors.New("catalog body is empty"))
		return
	}
	res, err := h.catalog.Sync(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"catalog": res})
}
