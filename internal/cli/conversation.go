package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// runConversation loops over buyer turns until the buyer leaves or the input ends.
func runConversation(ctx context.Context, out io.Writer, n Negotiator, ask PromptFunc) error {
	state, err := n.State(ctx)
	if err != nil {
		return fmt.Errorf("failed to load negotiation state: %w", err)
	}
	fmt.Fprintln(out, renderTerms(state))

	for {
		if ctx.Err() != nil {
			break
		}

		input, err := ask()
		if err != nil {
			if errors.Is(err, io.EOF) || isInterrupt(err) {
				break
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		message := strings.TrimSpace(input)
		if message == "" {
			continue
		}
		if isQuitCommand(message) {
			break
		}

		result, err := n.Submit(ctx, message)
		if err != nil {
			fmt.Fprintln(out, renderError(err))
			continue
		}

		fmt.Fprintln(out, renderReply(result))
		if result.Kind.Numeric() {
			fmt.Fprintln(out, renderTerms(result.State))
		}
	}

	lines, err := n.Transcript(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	fmt.Fprintln(out, renderTranscript(lines))

	if err := n.Close(ctx); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}
