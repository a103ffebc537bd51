package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zenlit/backend/internal/domain/model"
	authsvc "github.com/zenlit/backend/internal/services/auth"
	msgsvc "github.com/zenlit/backend/internal/services/messages"
	"github.com/zenlit/backend/internal/transport/http/dto"
	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *msgsvc.Service
}

func NewMessagesHandler(service *msgsvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	msg, err := h.service.Send(r.Context(), identity.UserID, req.ReceiverID, req.Body)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, messageResponse(msg))
}

func (h *MessagesHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	peerID, err := uuid.Parse(chi.URLParam(r, "peerID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid peer id")
		return
	}

	msgs, err := h.service.Conversation(r.Context(), identity.UserID, peerID)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	res := dto.ConversationResponse{Messages: make([]dto.MessageResponse, 0, len(msgs))}
	for _, msg := range msgs {
		res.Messages = append(res.Messages, messageResponse(msg))
	}

	httperrors.Write(w, http.StatusOK, res)
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	peerID, err := uuid.Parse(chi.URLParam(r, "peerID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid peer id")
		return
	}

	updated, err := h.service.MarkRead(r.Context(), identity.UserID, peerID)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{Updated: updated})
}

func messageResponse(msg model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
		ReadAt:     msg.ReadAt,
	}
}

func handleMessagesError(w http.ResponseWriter, err error) {
	var rl *msgsvc.RateLimitError
	switch {
	case errors.As(err, &rl):
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "RATE_LIMITED",
			Message:       "too many messages, slow down",
			RetryAfterSec: rl.RetryAfterSec,
		})
	case errors.Is(err, msgsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "message validation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "messages operation failed")
	}
}
