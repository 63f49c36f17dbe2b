package controllers

import (
	"context"
	"net/http"

	"github.com/pawmart/storefront-backend/api/middleware"
	"github.com/pawmart/storefront-backend/api/responses"
	"github.com/pawmart/storefront-backend/api/validators"
	"github.com/pawmart/storefront-backend/internal/upstream"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

// ChatService relays support-chat turns.
type ChatService interface {
	Send(ctx context.Context, messages []string, sessionID, userID string) (*upstream.ChatResponse, error)
}

type chatRequest struct {
	Messages  []string `json:"messages" validate:"required,min=1"`
	SessionID string   `json:"sessionId"`
}

// ChatSend forwards one support-chat turn. The user id, when a session
// exists, lets the bot personalize; guests chat anonymously.
func ChatSend(svc ChatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload chatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := ""
		if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
			userID = identity.Email
		}

		reply, err := svc.Send(r.Context(), payload.Messages, payload.SessionID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reply)
	}
}
