package cli

import (
	"context"

	"github.com/zhouzirui/haggle/backend/internal/model/product"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

// Negotiator is one buyer-side conversation, in process or over HTTP.
type Negotiator interface {
	Submit(ctx context.Context, content string) (negotiation.ResultView, error)
	State(ctx context.Context) (negotiation.View, error)
	Transcript(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// ProductTerms mirrors the /api/product payload.
type ProductTerms struct {
	Name               string   `json:"name"`
	BasePrice          string   `json:"basePrice"`
	FloorPrice         string   `json:"floorPrice"`
	Features           []string `json:"features"`
	MinDiscountPercent string   `json:"minDiscountPercent"`
	MaxDiscountPercent string   `json:"maxDiscountPercent"`
	MaxRounds          int      `json:"maxRounds"`
}

func termsFromProduct(item product.Product) ProductTerms {
	return ProductTerms{
		Name:               item.Name,
		BasePrice:          item.BasePrice.StringFixed(2),
		FloorPrice:         item.FloorPrice().StringFixed(2),
		Features:           item.Features,
		MinDiscountPercent: item.MinDiscount.Shift(2).String(),
		MaxDiscountPercent: item.MaxDiscountPercent(),
		MaxRounds:          item.MaxRounds,
	}
}

// localNegotiator drives an engine living in this process.
type localNegotiator struct {
	engine *negotiation.Negotiation
}

func newLocalNegotiator(engine *negotiation.Negotiation) *localNegotiator {
	return &localNegotiator{engine: engine}
}

func (l *localNegotiator) Submit(ctx context.Context, content string) (negotiation.ResultView, error) {
	return l.engine.Submit(ctx, content).View(), nil
}

func (l *localNegotiator) State(_ context.Context) (negotiation.View, error) {
	return l.engine.Snapshot().View(), nil
}

func (l *localNegotiator) Transcript(_ context.Context) ([]string, error) {
	history := l.engine.History()
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, msg.Line())
	}
	return lines, nil
}

func (l *localNegotiator) Close(_ context.Context) error {
	return nil
}
