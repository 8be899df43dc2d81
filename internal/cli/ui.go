package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	termsStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2).
		Width(64)

	historyStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F59E0B")).
		Padding(0, 2).
		Width(64)

	buyerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3B82F6")).
		Bold(true)

	sellerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	dealStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	closedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

// renderProduct shows the static terms of the item for sale.
func renderProduct(terms ProductTerms) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(terms.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "List price:   $%s\n", terms.BasePrice)
	fmt.Fprintf(&b, "Discounts:    %s%% to %s%%\n", terms.MinDiscountPercent, terms.MaxDiscountPercent)
	fmt.Fprintf(&b, "Rounds:       %d\n", terms.MaxRounds)
	if len(terms.Features) > 0 {
		b.WriteString("Features:\n")
		for _, feature := range terms.Features {
			fmt.Fprintf(&b, "  • %s\n", feature)
		}
	}
	return termsStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderTerms shows the live negotiation state.
func renderTerms(state negotiation.View) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(state.ProductName))
	b.WriteString("\n")
	fmt.Fprintf(&b, "List price:     $%s\n", state.BasePrice)
	fmt.Fprintf(&b, "Current offer:  $%s\n", state.CurrentOffer)
	fmt.Fprintf(&b, "Rounds left:    %d of %d\n", state.RoundsLeft, state.MaxRounds)
	b.WriteString(renderStatus(state))
	return termsStyle.Render(b.String())
}

func renderStatus(state negotiation.View) string {
	switch state.Status {
	case negotiation.StatusAccepted:
		return dealStyle.Render(fmt.Sprintf("Deal agreed at $%s", state.AgreedPrice))
	case negotiation.StatusExhausted:
		return closedStyle.Render("Negotiation rounds exhausted")
	default:
		return mutedStyle.Render("Type a whole-dollar offer or ask a question. 'exit' to leave.")
	}
}

// renderReply prints the seller's answer to one turn.
func renderReply(result negotiation.ResultView) string {
	line := sellerStyle.Render("AI: " + result.Reply)
	if result.Kind == negotiation.OutcomeFallback {
		line += " " + mutedStyle.Render("(offline)")
	}
	return line
}

// renderTranscript renders the full history as alternating You/AI lines.
func renderTranscript(lines []string) string {
	if len(lines) == 0 {
		return historyStyle.Render(mutedStyle.Render("No messages exchanged."))
	}

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "You: ") {
			rendered = append(rendered, buyerStyle.Render(line))
			continue
		}
		rendered = append(rendered, sellerStyle.Render(line))
	}
	return historyStyle.Render(strings.Join(rendered, "\n"))
}

func renderError(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}
