package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdlsagar677/Social-Media/internal/domain"
	"github.com/pdlsagar677/Social-Media/internal/presence"
	"github.com/pdlsagar677/Social-Media/internal/service"
)

type sendMessageRequest struct {
	TextMessage string `json:"textMessage"`
}

type sendMessageResponse struct {
	Success    bool            `json:"success"`
	NewMessage *domain.Message `json:"newMessage"`
}

type messagesResponse struct {
	Success  bool              `json:"success"`
	Messages []*domain.Message `json:"messages"`
}

type onlineUsersResponse struct {
	Success     bool     `json:"success"`
	OnlineUsers []string `json:"onlineUsers"`
}

// @Summary      Send a direct message
// @Description  Persists a message to user {id} and pushes it to them if they are online
// @Tags         message
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Receiver user id"
// @Param        input body  sendMessageRequest  true  "Message body"
// @Success      201  {object}  sendMessageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /message/send/{id} [post]
func handleSendMessage(chat *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID := CurrentUserID(r)
		receiverID := chi.URLParam(r, "id")

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: "invalid JSON body"})
			return
		}

		msg, err := chat.Send(r.Context(), senderID, receiverID, req.TextMessage)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, sendMessageResponse{Success: true, NewMessage: msg})
	}
}

// @Summary      Get a conversation
// @Description  Returns every message exchanged with user {id}, oldest first
// @Tags         message
// @Produce      json
// @Param        id   path  string  true  "Other user id"
// @Success      200  {object}  messagesResponse
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /message/all/{id} [get]
func handleGetMessages(chat *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := chat.History(r.Context(), CurrentUserID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messagesResponse{Success: true, Messages: msgs})
	}
}

// @Summary      List online users
// @Tags         message
// @Produce      json
// @Success      200  {object}  onlineUsersResponse
// @Security     BearerAuth
// @Router       /message/online [get]
func handleOnlineUsers(registry *presence.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, onlineUsersResponse{Success: true, OnlineUsers: registry.Online()})
	}
}
