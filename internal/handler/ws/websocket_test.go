package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/haggle/backend/internal/model/product"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
	sessionService "github.com/zhouzirui/haggle/backend/internal/service/session"
)

type replyEnvelope struct {
	Type string                 `json:"type"`
	Data negotiation.ResultView `json:"data"`
}

func newServer(t *testing.T) (*httptest.Server, *sessionService.Service) {
	t.Helper()
	svc, err := sessionService.NewService(product.Default(), nil, sessionService.Options{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestWebSocketNegotiationRoundTrip(t *testing.T) {
	srv, svc := newServer(t)
	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	conn, _, err := dial(t, srv, session.ID)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()

	var connected outgoingMessage
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatalf("read connected err: %v", err)
	}
	if connected.Type != "connected" {
		t.Fatalf("expected connected, got %s", connected.Type)
	}

	data, _ := json.Marshal(TextMessage{Text: "1700"})
	if err := conn.WriteJSON(inboundMessage{Type: "text", Data: data}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var reply replyEnvelope
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply err: %v", err)
	}
	if reply.Type != "reply" || reply.Data.Kind != negotiation.OutcomeCounter {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.Data.State.CurrentOffer != "1850.00" {
		t.Fatalf("expected 1850.00, got %s", reply.Data.State.CurrentOffer)
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	srv, svc := newServer(t)
	session, _ := svc.CreateSession(context.Background())

	conn, _, err := dial(t, srv, session.ID)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()

	var connected outgoingMessage
	_ = conn.ReadJSON(&connected)

	if err := conn.WriteJSON(inboundMessage{Type: "audio"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var msg outgoingMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %s", msg.Type)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := newServer(t)

	_, resp, err := dial(t, srv, "missing")
	if err == nil {
		t.Fatal("expected dial to fail for unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
