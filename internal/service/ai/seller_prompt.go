package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/haggle/backend/internal/analysis/tone"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

// BuildSystemPrompt states the negotiation terms and rules for the seller
// persona. The numbers come from the snapshot only.
func BuildSystemPrompt(snapshot negotiation.Snapshot, message string) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("You are an AI salesperson negotiating the price of %s.\n", snapshot.ProductName))
	builder.WriteString(fmt.Sprintf("- Base Price: $%s\n", snapshot.BasePrice.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("- Minimum Acceptable Price: $%s\n", snapshot.FloorPrice.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("- Current Offer: $%s\n", snapshot.CurrentOffer.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("- Max Discount: %s%%\n", snapshot.MaxDiscountPercent()))
	builder.WriteString(fmt.Sprintf("- Rounds Left: %d\n", snapshot.RoundsLeft))
	if len(snapshot.Features) > 0 {
		builder.WriteString(fmt.Sprintf("- Features: %s\n", strings.Join(snapshot.Features, ", ")))
	}

	builder.WriteString("\nNegotiation Rules:\n")
	builder.WriteString("- Accept if the customer offers >= current offer.\n")
	builder.WriteString("- Reject if the offer is < minimum price.\n")
	builder.WriteString("- Otherwise, counter-offer closer to the user's price.\n")
	builder.WriteString("- If no rounds left, state final price and refuse further negotiation.\n")

	switch snapshot.Status {
	case negotiation.StatusAccepted:
		builder.WriteString(fmt.Sprintf("\nA deal has already been agreed at $%s. Do not reopen the price.\n", snapshot.AgreedPrice.StringFixed(2)))
	case negotiation.StatusExhausted:
		builder.WriteString(fmt.Sprintf("\nNo rounds are left. The final price is $%s.\n", snapshot.CurrentOffer.StringFixed(2)))
	}

	if hint := tone.StyleHint(tone.Analyze(message).Tone); hint != "" {
		builder.WriteString("\nTone: ")
		builder.WriteString(hint)
		builder.WriteString("\n")
	}

	builder.WriteString("\nStay professional, persuasive, and on-topic.")
	return builder.String()
}
