package upstream

import (
	"context"
	"net/http"
)

// ChatRequest is one turn of the support chat conversation.
type ChatRequest struct {
	Messages  []string `json:"messages"`
	SessionID string   `json:"sessionId,omitempty"`
	UserID    string   `json:"userId,omitempty"`
}

// ChatProduct is a product suggestion attached to a bot reply.
type ChatProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
	Href  string  `json:"href"`
}

// ChatResponse is the bot reply for a chat turn.
type ChatResponse struct {
	SessionID string        `json:"sessionId"`
	Message   string        `json:"message"`
	Products  []ChatProduct `json:"products,omitempty"`
}

// SendChat forwards a chat turn to the backend chatbot.
func (c *Client) SendChat(ctx context.Context, payload ChatRequest) (*ChatResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/chatbot", "", payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "chatbot")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "chatbot")
	}

	var body ChatResponse
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return &body, nil
}
