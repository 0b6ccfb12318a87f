// Package server provides the HTTP chat API: request binding, turn
// dispatch to the advisor, and the admin endpoint for prompt reloads.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/Killzin1000/quality-eco/internal/advisor"
	"github.com/Killzin1000/quality-eco/internal/config"
	apperrors "github.com/Killzin1000/quality-eco/internal/errors"
	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/metrics"
	"github.com/Killzin1000/quality-eco/internal/prompt"
	"github.com/Killzin1000/quality-eco/internal/sentry"
	"github.com/gin-gonic/gin"
)

// ChatRequest is the JSON body of POST /chat. Session is optional; a
// missing session starts a fresh conversation.
type ChatRequest struct {
	Message string           `json:"message" binding:"required"`
	Session *advisor.Session `json:"session"`
}

// ChatResponse is the JSON reply of POST /chat. The updated session must be
// echoed back by the client on the next turn.
type ChatResponse struct {
	Reply      string           `json:"reply"`
	Session    *advisor.Session `json:"session"`
	NavigateTo string           `json:"navigate_to,omitempty"`
}

// Handler serves the chat API endpoints.
type Handler struct {
	advisor *advisor.Advisor
	prompts *prompt.Cache
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewHandler creates a chat API handler.
func NewHandler(adv *advisor.Advisor, prompts *prompt.Cache, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		advisor: adv,
		prompts: prompts,
		metrics: m,
		logger:  log.WithModule("server"),
	}
}

// HandleChat is the Gin handler for POST /chat.
func (h *Handler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordHTTPError("bad_request", "/chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess := req.Session
	if sess == nil {
		sess = advisor.NewSession()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.TurnProcessing)
	defer cancel()

	result, err := h.advisor.HandleTurn(ctx, sess, req.Message)
	if err != nil {
		var vErr *apperrors.ValidationError
		if errors.As(err, &vErr) {
			h.recordHTTPError("validation", "/chat")
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}

		h.logger.WithError(err).Error("turn processing failed")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		h.recordHTTPError("internal", "/chat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:      result.Reply,
		Session:    result.Session,
		NavigateTo: result.NavigateTo,
	})
}

// HandleRefreshPrompts is the Gin handler for POST /refresh-prompts.
// It reloads the prompt modules from the store so content edits take
// effect without a restart.
func (h *Handler) HandleRefreshPrompts(c *gin.Context) {
	count, err := h.prompts.Refresh(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("prompt refresh failed")
		h.recordHTTPError("internal", "/refresh-prompts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload prompts"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": "empty",
			"detail": "no active prompt modules found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "modules": count})
}

func (h *Handler) recordHTTPError(errorType, route string) {
	if h.metrics != nil {
		h.metrics.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
	}
}
