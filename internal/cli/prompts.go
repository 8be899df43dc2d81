package cli

import (
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// PromptFunc reads one buyer turn. io.EOF or terminal.InterruptErr end the conversation.
type PromptFunc func() (string, error)

// PromptForMessage asks the buyer for an offer or a question.
func PromptForMessage() (string, error) {
	var message string
	prompt := &survey.Input{
		Message: "You:",
		Help:    "Digits only (e.g. 1700) is an offer; anything else is a question. Type exit or quit to leave.",
	}

	if err := survey.AskOne(prompt, &message); err != nil {
		return "", err
	}
	return message, nil
}

func isQuitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit":
		return true
	default:
		return false
	}
}

func isInterrupt(err error) bool {
	return errors.Is(err, terminal.InterruptErr)
}
