package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/zhouzirui/haggle/backend/internal/negotiation"
	sessionService "github.com/zhouzirui/haggle/backend/internal/service/session"
	"github.com/zhouzirui/haggle/backend/pkg/utils"
)

// Handler delivers negotiation replies via Server-Sent Events
type Handler struct {
	sessions *sessionService.Service
}

// New creates a new stream handler
func New(sessions *sessionService.Service) *Handler {
	return &Handler{sessions: sessions}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string              `json:"event"`
	Content   string              `json:"content,omitempty"`
	SessionID string              `json:"sessionId,omitempty"`
	Kind      negotiation.Outcome `json:"kind,omitempty"`
	State     *negotiation.View   `json:"state,omitempty"`
	Finished  bool                `json:"finished,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// HandleStreamRequest submits one buyer input and streams the outcome
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	session, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: session.ID,
		Content:   fmt.Sprintf("Negotiating %s", session.ProductName),
	})

	result, err := h.sessions.Submit(ctx, session.ID, userMessage)
	if err != nil {
		h.sendSSE(w, flusher, StreamResponse{Event: "error", Error: err.Error()})
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: session.ID,
		Kind:      result.Kind,
		Content:   result.Reply,
	})

	state := result.Snapshot.View()
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "state",
		SessionID: session.ID,
		State:     &state,
	})

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: session.ID,
		Finished:  true,
	})

	log.Printf("[sse] completed response for session=%s, outcome=%s", session.ID, result.Kind)
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEEvent(w, flusher, response.Event, response)
}
