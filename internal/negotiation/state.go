package negotiation

import (
	"github.com/shopspring/decimal"

	"github.com/zhouzirui/haggle/backend/internal/model/chat"
)

// Status is the tagged state of a negotiation.
type Status string

const (
	StatusActive    Status = "active"
	StatusAccepted  Status = "accepted"
	StatusExhausted Status = "exhausted"
)

// Outcome labels how a single submission was resolved.
type Outcome string

const (
	OutcomeCounter    Outcome = "counter"
	OutcomeAccepted   Outcome = "accepted"
	OutcomeBelowFloor Outcome = "below_floor"
	OutcomeExhausted  Outcome = "exhausted"
	OutcomeClosed     Outcome = "closed"
	OutcomeDialogue   Outcome = "dialogue"
	OutcomeFallback   Outcome = "fallback"
)

// Numeric reports whether the outcome came from the deterministic rule set.
func (o Outcome) Numeric() bool {
	switch o {
	case OutcomeCounter, OutcomeAccepted, OutcomeBelowFloor, OutcomeExhausted, OutcomeClosed:
		return true
	default:
		return false
	}
}

// Snapshot is a read-only copy of a negotiation together with the static
// product terms the delegate needs.
type Snapshot struct {
	ProductName  string          `json:"productName"`
	Features     []string        `json:"features,omitempty"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	FloorPrice   decimal.Decimal `json:"floorPrice"`
	CurrentOffer decimal.Decimal `json:"currentOffer"`
	MaxDiscount  decimal.Decimal `json:"maxDiscount"`
	RoundsLeft   int             `json:"roundsLeft"`
	MaxRounds    int             `json:"maxRounds"`
	Status       Status          `json:"status"`
	AgreedPrice  decimal.Decimal `json:"agreedPrice"`
	History      []chat.Message  `json:"history,omitempty"`
}

// MaxDiscountPercent renders the max discount fraction as a percentage.
func (s Snapshot) MaxDiscountPercent() string {
	return s.MaxDiscount.Mul(decimal.NewFromInt(100)).String()
}

// Result is what a submission returns to the caller.
type Result struct {
	Kind     Outcome  `json:"kind"`
	Reply    string   `json:"reply"`
	Snapshot Snapshot `json:"state"`
}

// View is the wire form of a snapshot with prices fixed to two decimals.
type View struct {
	ProductName        string   `json:"productName"`
	Features           []string `json:"features,omitempty"`
	BasePrice          string   `json:"basePrice"`
	FloorPrice         string   `json:"floorPrice"`
	CurrentOffer       string   `json:"currentOffer"`
	MaxDiscountPercent string   `json:"maxDiscountPercent"`
	RoundsLeft         int      `json:"roundsLeft"`
	MaxRounds          int      `json:"maxRounds"`
	Status             Status   `json:"status"`
	AgreedPrice        string   `json:"agreedPrice,omitempty"`
}

// View converts the snapshot for display.
func (s Snapshot) View() View {
	v := View{
		ProductName:        s.ProductName,
		Features:           s.Features,
		BasePrice:          s.BasePrice.StringFixed(2),
		FloorPrice:         s.FloorPrice.StringFixed(2),
		CurrentOffer:       s.CurrentOffer.StringFixed(2),
		MaxDiscountPercent: s.MaxDiscountPercent(),
		RoundsLeft:         s.RoundsLeft,
		MaxRounds:          s.MaxRounds,
		Status:             s.Status,
	}
	if s.Status == StatusAccepted {
		v.AgreedPrice = s.AgreedPrice.StringFixed(2)
	}
	return v
}

// ResultView is the wire form of a submission result.
type ResultView struct {
	Kind  Outcome `json:"kind"`
	Reply string  `json:"reply"`
	State View    `json:"state"`
}

// View converts the result for display.
func (r Result) View() ResultView {
	return ResultView{Kind: r.Kind, Reply: r.Reply, State: r.Snapshot.View()}
}
