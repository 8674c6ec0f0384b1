package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-tutor/internal/http/response"
	"github.com/yungbote/neurobridge-tutor/internal/platform/apierr"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

func toAPIError(err error) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return apierr.New(http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, services.ErrNoArmAvailable):
		return apierr.New(http.StatusConflict, "no_arm_available", err)
	case errors.Is(err, services.ErrStaleWrite):
		return apierr.New(http.StatusConflict, "stale_write", err)
	case errors.Is(err, services.ErrLearnerBusy):
		return apierr.New(http.StatusConflict, "learner_busy", err)
	case errors.Is(err, services.ErrTopicNotFound):
		return apierr.New(http.StatusNotFound, "topic_not_found", err)
	case errors.Is(err, services.ErrLearnerMissing):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	}
	return nil
}

func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	if ae := toAPIError(err); ae != nil {
		response.RespondAPIError(c, ae)
		return
	}
	log.Error("request failed", "path", c.FullPath(), "error", err)
	response.RespondAPIError(c, err)
}
