// Package handler exposes the chat HTTP endpoint.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitment_chat_backend/internal/chat/service"
	"fitment_chat_backend/internal/chat/transport"
	"fitment_chat_backend/platform/httpkit"
)

// defaultUserID keys the shared session for clients that send no user id.
const defaultUserID = "default"

// Handler handles HTTP requests for the chat.
type Handler struct {
	svc *service.Service
}

// New creates a new chat handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Chat runs one conversation turn.
// POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "message is required", nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpkit.Error(c, http.StatusBadRequest, "message is required", nil)
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = defaultUserID
	}

	result, err := h.svc.Turn(c.Request.Context(), userID, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewChatResponse(result))
}
