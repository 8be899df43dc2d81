// Package negotiation holds the per-session price negotiation state machine.
//
// Numeric offers are resolved by a fixed rule set that only ever narrows the
// seller's offer toward the floor price. Everything else is forwarded to an
// Advisor for a conversational reply and never changes the numbers.
package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/zhouzirui/haggle/backend/internal/model/chat"
	"github.com/zhouzirui/haggle/backend/internal/model/product"
)

const (
	defaultDelegateTimeout = 30 * time.Second
	defaultHistoryLimit    = 10
)

var (
	ErrInvalidProduct = errors.New("invalid product terms")

	two = decimal.NewFromInt(2)
)

// Option customises a Negotiation.
type Option func(*Negotiation)

// WithID tags the negotiation with its session identifier.
func WithID(id string) Option {
	return func(n *Negotiation) { n.id = id }
}

// WithDelegateTimeout bounds each advisor call.
func WithDelegateTimeout(d time.Duration) Option {
	return func(n *Negotiation) {
		if d > 0 {
			n.delegateTimeout = d
		}
	}
}

// WithHistoryLimit sets how many recent history entries the advisor sees.
// Zero hides the history entirely.
func WithHistoryLimit(limit int) Option {
	return func(n *Negotiation) {
		if limit >= 0 {
			n.historyLimit = limit
		}
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Negotiation) {
		if now != nil {
			n.now = now
		}
	}
}

// Negotiation is one session's bargaining state. Submissions are serialized:
// each one, including any advisor call, completes before the next starts.
type Negotiation struct {
	mu sync.Mutex

	id      string
	product product.Product
	advisor Advisor

	basePrice    decimal.Decimal
	floorPrice   decimal.Decimal
	currentOffer decimal.Decimal
	agreedPrice  decimal.Decimal
	roundsLeft   int
	status       Status
	history      []chat.Message

	delegateTimeout time.Duration
	historyLimit    int
	now             func() time.Time
	entropy         *ulid.MonotonicEntropy
}

// New starts a negotiation at the product's base price. advisor may be nil,
// in which case every free-form message gets the fallback reply.
func New(p product.Product, advisor Advisor, opts ...Option) (*Negotiation, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}

	p = p.Clone()
	n := &Negotiation{
		product:         p,
		advisor:         advisor,
		basePrice:       p.BasePrice,
		floorPrice:      p.FloorPrice(),
		currentOffer:    p.BasePrice,
		roundsLeft:      p.MaxRounds,
		status:          StatusActive,
		history:         make([]chat.Message, 0, 16),
		delegateTimeout: defaultDelegateTimeout,
		historyLimit:    defaultHistoryLimit,
		now:             func() time.Time { return time.Now().UTC() },
		entropy:         ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// ID returns the session identifier, empty when none was set.
func (n *Negotiation) ID() string {
	return n.id
}

// Submit resolves one buyer input. It never fails: rule outcomes and delegate
// failures both come back as a reply string.
func (n *Negotiation) Submit(ctx context.Context, raw string) Result {
	n.mu.Lock()
	defer n.mu.Unlock()

	var result Result
	if offer, ok := parseOffer(raw); ok {
		result = n.applyOffer(offer)
	} else {
		result = n.converse(ctx, raw)
	}

	n.record(raw, result)
	result.Snapshot = n.snapshotLocked(0)
	return result
}

func (n *Negotiation) applyOffer(offer decimal.Decimal) Result {
	switch {
	case n.status == StatusAccepted:
		return Result{Kind: OutcomeClosed, Reply: replyClosed(n.agreedPrice)}
	case n.roundsLeft == 0:
		return Result{Kind: OutcomeExhausted, Reply: replyExhausted}
	case offer.GreaterThanOrEqual(n.currentOffer):
		n.status = StatusAccepted
		n.agreedPrice = n.currentOffer
		return Result{Kind: OutcomeAccepted, Reply: replyAccepted}
	case offer.LessThan(n.floorPrice):
		return Result{Kind: OutcomeBelowFloor, Reply: replyBelowFloor}
	}

	// floor <= offer < current, so the midpoint stays inside [floor, current].
	n.currentOffer = n.currentOffer.Add(offer).Div(two)
	n.roundsLeft--
	if n.roundsLeft == 0 {
		n.status = StatusExhausted
	}
	return Result{Kind: OutcomeCounter, Reply: replyCounter(n.currentOffer)}
}

func (n *Negotiation) converse(ctx context.Context, message string) Result {
	if n.advisor == nil {
		log.Printf("[negotiation] no advisor configured, session=%s", n.id)
		return Result{Kind: OutcomeFallback, Reply: replyFallback}
	}

	callCtx, cancel := context.WithTimeout(ctx, n.delegateTimeout)
	defer cancel()

	reply, err := n.advisor.Generate(callCtx, n.snapshotLocked(n.historyLimit), message)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("%w: empty reply", ErrDelegateUnavailable)
	}
	if err != nil {
		log.Printf("[negotiation] delegate failed, session=%s: %v", n.id, err)
		return Result{Kind: OutcomeFallback, Reply: replyFallback}
	}
	return Result{Kind: OutcomeDialogue, Reply: reply}
}

func (n *Negotiation) record(userInput string, result Result) {
	n.history = append(n.history,
		n.newMessage(chat.SenderUser, userInput, ""),
		n.newMessage(chat.SenderAssistant, result.Reply, string(result.Kind)),
	)
}

func (n *Negotiation) newMessage(sender, content, outcome string) chat.Message {
	at := n.now()
	return chat.Message{
		ID:        ulid.MustNew(ulid.Timestamp(at), n.entropy).String(),
		SessionID: n.id,
		Sender:    sender,
		Content:   content,
		Outcome:   outcome,
		CreatedAt: at,
	}
}

// Snapshot returns the current state without history.
func (n *Negotiation) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked(0)
}

// Status returns the tagged state.
func (n *Negotiation) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// History returns a copy of every exchanged message in order.
func (n *Negotiation) History() []chat.Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	copied := make([]chat.Message, len(n.history))
	copy(copied, n.history)
	return copied
}

func (n *Negotiation) snapshotLocked(historyLimit int) Snapshot {
	snap := Snapshot{
		ProductName:  n.product.Name,
		Features:     append([]string(nil), n.product.Features...),
		BasePrice:    n.basePrice,
		FloorPrice:   n.floorPrice,
		CurrentOffer: n.currentOffer,
		MaxDiscount:  n.product.MaxDiscount,
		RoundsLeft:   n.roundsLeft,
		MaxRounds:    n.product.MaxRounds,
		Status:       n.status,
		AgreedPrice:  n.agreedPrice,
	}

	if historyLimit > 0 && len(n.history) > 0 {
		start := len(n.history) - historyLimit
		if start < 0 {
			start = 0
		}
		snap.History = make([]chat.Message, len(n.history)-start)
		copy(snap.History, n.history[start:])
	}
	return snap
}
