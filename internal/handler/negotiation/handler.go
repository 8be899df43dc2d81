package negotiation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/haggle/backend/internal/model/chat"
	engine "github.com/zhouzirui/haggle/backend/internal/negotiation"
	sessionService "github.com/zhouzirui/haggle/backend/internal/service/session"
	"github.com/zhouzirui/haggle/backend/pkg/utils"
)

// Handler 议价会话的HTTP处理器
type Handler struct {
	sessions *sessionService.Service
}

// New 创建议价处理器
func New(sessions *sessionService.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetState)
		sr.Delete("/", h.handleCloseSession)
		sr.Post("/messages", h.handleSubmit)
		sr.Get("/transcript", h.handleTranscript)
	})
}

type sessionResponse struct {
	Session chat.Session `json:"session"`
	State   engine.View  `json:"state"`
}

type transcriptResponse struct {
	SessionID string         `json:"sessionId"`
	Messages  []chat.Message `json:"messages"`
	Lines     []string       `json:"lines"`
}

// handleCreateSession 创建会话，价格从原价开始
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot, err := h.sessions.Snapshot(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, State: snapshot.View()})
}

// handleGetState 返回当前议价状态
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	snapshot, err := h.sessions.Snapshot(r.Context(), sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{Session: session, State: snapshot.View()})
}

// handleCloseSession 结束会话并释放状态
func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交一条报价或自由文本
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content *string `json:"content"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if payload.Content == nil {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	result, err := h.sessions.Submit(r.Context(), chi.URLParam(r, "sessionID"), *payload.Content)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result.View())
}

// handleTranscript 返回完整的对话记录
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.sessions.Transcript(r.Context(), sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, msg.Line())
	}

	utils.RespondJSON(w, http.StatusOK, transcriptResponse{
		SessionID: sessionID,
		Messages:  messages,
		Lines:     lines,
	})
}

func respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, sessionService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
