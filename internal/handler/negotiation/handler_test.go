package negotiation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/haggle/backend/internal/model/product"
	engine "github.com/zhouzirui/haggle/backend/internal/negotiation"
	sessionService "github.com/zhouzirui/haggle/backend/internal/service/session"
)

func setupRouter(t *testing.T) (*chi.Mux, *sessionService.Service) {
	t.Helper()
	advisor := engine.AdvisorFunc(func(_ context.Context, snap engine.Snapshot, _ string) (string, error) {
		return "Happy to help with " + snap.ProductName, nil
	})
	svc, err := sessionService.NewService(product.Default(), advisor, sessionService.Options{DelegateTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r, svc
}

func createSession(t *testing.T, r http.Handler) sessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var created sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	return created
}

func submit(t *testing.T, r http.Handler, sessionID, content string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"content": content})
	req := httptest.NewRequest(http.MethodPost, "/session/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateSessionStartsAtBasePrice(t *testing.T) {
	r, _ := setupRouter(t)

	created := createSession(t, r)

	if created.Session.ID == "" {
		t.Fatal("expected session id")
	}
	if created.State.CurrentOffer != "2000.00" || created.State.FloorPrice != "1640.00" {
		t.Fatalf("unexpected initial state: %+v", created.State)
	}
	if created.State.Status != engine.StatusActive {
		t.Fatalf("expected active status, got %s", created.State.Status)
	}
}

func TestSubmitCounterOffer(t *testing.T) {
	r, _ := setupRouter(t)
	created := createSession(t, r)

	resp := submit(t, r, created.Session.ID, "1700")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result engine.ResultView
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.Kind != engine.OutcomeCounter {
		t.Fatalf("expected counter, got %s", result.Kind)
	}
	if result.State.CurrentOffer != "1850.00" || result.State.RoundsLeft != 7 {
		t.Fatalf("unexpected state: %+v", result.State)
	}
}

func TestSubmitFreeFormUsesAdvisor(t *testing.T) {
	r, _ := setupRouter(t)
	created := createSession(t, r)

	resp := submit(t, r, created.Session.ID, "$1700")

	var result engine.ResultView
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.Kind != engine.OutcomeDialogue {
		t.Fatalf("expected dialogue, got %s", result.Kind)
	}
	if result.State.CurrentOffer != "2000.00" {
		t.Fatalf("free-form input must not move the price, got %s", result.State.CurrentOffer)
	}
}

func TestSubmitMissingContent(t *testing.T) {
	r, _ := setupRouter(t)
	created := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/session/"+created.Session.ID+"/messages", bytes.NewReader([]byte(`{}`)))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	r, _ := setupRouter(t)

	resp := submit(t, r, "missing", "1700")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTranscriptRendersLines(t *testing.T) {
	r, _ := setupRouter(t)
	created := createSession(t, r)
	submit(t, r, created.Session.ID, "1000")

	req := httptest.NewRequest(http.MethodGet, "/session/"+created.Session.ID+"/transcript", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var transcript transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(transcript.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(transcript.Lines))
	}
	if transcript.Lines[0] != "You: 1000" {
		t.Fatalf("unexpected first line %q", transcript.Lines[0])
	}
}

func TestCloseSession(t *testing.T) {
	r, svc := setupRouter(t)
	created := createSession(t, r)

	req := httptest.NewRequest(http.MethodDelete, "/session/"+created.Session.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected no live sessions, got %d", svc.Count())
	}

	req = httptest.NewRequest(http.MethodGet, "/session/"+created.Session.ID, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", resp.Code)
	}
}
