package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pawmart/storefront-backend/internal/upstream"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

// API is the chatbot surface of the commerce backend.
type API interface {
	SendChat(ctx context.Context, payload upstream.ChatRequest) (*upstream.ChatResponse, error)
}

// Service relays support-chat turns. It owns session id continuity: the
// first turn of a conversation gets a fresh id when the bot does not assign
// one, so follow-up turns always carry a stable id.
type Service struct {
	api    API
	logger *logger.Logger
}

func NewService(api API, logg *logger.Logger) *Service {
	return &Service{api: api, logger: logg}
}

// Send forwards one chat turn and returns the bot reply.
func (s *Service) Send(ctx context.Context, messages []string, sessionID, userID string) (*upstream.ChatResponse, error) {
	cleaned := make([]string, 0, len(messages))
	for _, message := range messages {
		if trimmed := strings.TrimSpace(message); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chat turn carries no message")
	}

	resp, err := s.api.SendChat(ctx, upstream.ChatRequest{
		Messages:  cleaned,
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		s.logger.Error(ctx, "chat.relay_failed", err)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "chatbot unavailable")
	}

	if resp.SessionID == "" {
		if sessionID != "" {
			resp.SessionID = sessionID
		} else {
			resp.SessionID = uuid.NewString()
		}
	}
	return resp, nil
}
