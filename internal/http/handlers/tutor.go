package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-tutor/internal/http/response"
	"github.com/yungbote/neurobridge-tutor/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-tutor/internal/platform/logger"
	"github.com/yungbote/neurobridge-tutor/internal/services"
)

type TutorHandler struct {
	log   *logger.Logger
	tutor services.TutorService
}

func NewTutorHandler(log *logger.Logger, tutor services.TutorService) *TutorHandler {
	return &TutorHandler{log: log.With("handler", "TutorHandler"), tutor: tutor}
}

type nextRequest struct {
	TopicIDs []string `json:"topic_ids"`
}

// learnerFrom returns the authenticated learner or writes a 401.
func learnerFrom(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.LearnerID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrLearnerMissing)
		return uuid.Nil, false
	}
	return rd.LearnerID, true
}

func parseScope(raw []string) (services.Scope, error) {
	var scope services.Scope
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return scope, errors.New("topic_ids must be uuids")
		}
		scope.TopicIDs = append(scope.TopicIDs, id)
	}
	return scope, nil
}

// POST /api/tutor/next
func (h *TutorHandler) Next(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	var req nextRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	scope, err := parseScope(req.TopicIDs)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	sel, err := h.tutor.SelectNext(c.Request.Context(), learnerID, scope)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"selection": sel})
}

// GET /api/tutor/preview?topic_id=...
func (h *TutorHandler) Preview(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	scope, err := parseScope(c.QueryArray("topic_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	sel, err := h.tutor.PreviewNext(c.Request.Context(), learnerID, scope)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"selection": sel})
}

// POST /api/tutor/answers
func (h *TutorHandler) SubmitAnswer(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	var in services.AnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	out, err := h.tutor.SubmitAnswer(c.Request.Context(), learnerID, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"outcome": out})
}

// DELETE /api/tutor/topics/:id
func (h *TutorHandler) ResetTopic(c *gin.Context) {
	learnerID, ok := learnerFrom(c)
	if !ok {
		return
	}
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", errors.New("invalid topic id"))
		return
	}
	if err := h.tutor.ResetTopic(c.Request.Context(), learnerID, topicID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
