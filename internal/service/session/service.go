package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/haggle/backend/internal/model/chat"
	"github.com/zhouzirui/haggle/backend/internal/model/product"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

var ErrSessionNotFound = errors.New("session not found")

// Options tune the negotiations the service creates.
type Options struct {
	DelegateTimeout time.Duration
	HistoryLimit    int
}

type entry struct {
	session     chat.Session
	negotiation *negotiation.Negotiation
}

// Service owns one Negotiation per session. The map lock only guards lookups;
// submissions run on the negotiation itself so a slow delegate call in one
// session never blocks another.
type Service struct {
	product product.Product
	advisor negotiation.Advisor
	opts    Options

	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewService bootstraps the in-memory session registry.
func NewService(p product.Product, advisor negotiation.Advisor, opts Options) (*Service, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product: %w", err)
	}
	return &Service{
		product:  p.Clone(),
		advisor:  advisor,
		opts:     opts,
		sessions: make(map[string]*entry),
	}, nil
}

// Product returns the terms every session negotiates over.
func (s *Service) Product() product.Product {
	return s.product.Clone()
}

// CreateSession provisions a fresh negotiation at the base price.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	id := uuid.NewString()

	n, err := negotiation.New(s.product, s.advisor,
		negotiation.WithID(id),
		negotiation.WithDelegateTimeout(s.opts.DelegateTimeout),
		negotiation.WithHistoryLimit(s.opts.HistoryLimit),
	)
	if err != nil {
		return chat.Session{}, err
	}

	session := chat.Session{
		ID:          id,
		ProductName: s.product.Name,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[id] = &entry{session: session, negotiation: n}
	s.mu.Unlock()

	log.Printf("[session] created session=%s", id)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return e.session, nil
}

// Snapshot returns the negotiation state of a session.
func (s *Service) Snapshot(_ context.Context, sessionID string) (negotiation.Snapshot, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return negotiation.Snapshot{}, err
	}
	return e.negotiation.Snapshot(), nil
}

// Transcript returns the ordered history of a session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return e.negotiation.History(), nil
}

// Submit forwards one buyer input to the session's negotiation.
func (s *Service) Submit(ctx context.Context, sessionID, raw string) (negotiation.Result, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return negotiation.Result{}, err
	}

	result := e.negotiation.Submit(ctx, raw)
	log.Printf("[session] session=%s outcome=%s rounds_left=%d", sessionID, result.Kind, result.Snapshot.RoundsLeft)
	return result, nil
}

// CloseSession tears a session down. Later calls with its id fail.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	log.Printf("[session] closed session=%s", sessionID)
	return nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
