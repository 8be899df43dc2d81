package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	negotiationHandler "github.com/zhouzirui/haggle/backend/internal/handler/negotiation"
	productHandler "github.com/zhouzirui/haggle/backend/internal/handler/product"
	"github.com/zhouzirui/haggle/backend/internal/handler/stream"
	"github.com/zhouzirui/haggle/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/haggle/backend/internal/middleware"
	sessionService "github.com/zhouzirui/haggle/backend/internal/service/session"
	"github.com/zhouzirui/haggle/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the session registry.
func NewRouter(sessions *sessionService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	productH := productHandler.New(sessions.Product())
	negotiationH := negotiationHandler.New(sessions)
	streamHandler := stream.New(sessions)
	wsHandler := ws.New(sessions)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": sessions.Count()})
	})

	r.Route("/api", func(api chi.Router) {
		productH.RegisterRoutes(api)
		negotiationH.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage, ok := r.URL.Query()["message"]
			if !ok || len(userMessage) == 0 || userMessage[0] == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage[0]); err != nil {
				if errors.Is(err, sessionService.ErrSessionNotFound) {
					utils.RespondError(w, http.StatusNotFound, err.Error())
					return
				}
				log.Printf("[sse] error handling request: %v", err)
			}
		})
	})

	return r
}
