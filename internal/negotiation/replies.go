package negotiation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	replyExhausted  = "I've made my final offer. No further negotiations."
	replyAccepted   = "Great! You've got a deal. We'll finalize your purchase now."
	replyBelowFloor = "Sorry, I can't go that low. Our lowest acceptable price is above that range."
	replyFallback   = "I'm having trouble answering that right now. Feel free to send a numeric offer, or try again in a moment."
)

func replyCounter(offer decimal.Decimal) string {
	return fmt.Sprintf("I appreciate your offer! I can lower the price to $%s. What do you think?", offer.StringFixed(2))
}

func replyClosed(agreed decimal.Decimal) string {
	return fmt.Sprintf("We already have a deal at $%s. We'll finalize your purchase now.", agreed.StringFixed(2))
}
