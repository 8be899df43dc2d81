package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/haggle/backend/internal/config"
	"github.com/zhouzirui/haggle/backend/internal/model/chat"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

const retryBackoff = 500 * time.Millisecond

// Service is the conversational delegate: it turns a negotiation snapshot
// into a seller instruction prompt and asks the chat model for a reply.
type Service struct {
	chatModel model.BaseChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	backoff   time.Duration
}

var _ negotiation.Advisor = (*Service)(nil)

// NewService creates the delegate from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel builds the delegate around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, cfg config.AIConfig) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile negotiation chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
		backoff:   retryBackoff,
	}, nil
}

// Generate asks the model for a reply to a free-form buyer message. Every
// failure is reported as negotiation.ErrDelegateUnavailable.
func (s *Service) Generate(ctx context.Context, snapshot negotiation.Snapshot, message string) (string, error) {
	input := s.buildChainInput(snapshot, message)

	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", negotiation.ErrDelegateUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}

		response, err := s.chain.Invoke(ctx, input)
		if err == nil && (response == nil || strings.TrimSpace(response.Content) == "") {
			err = errors.New("empty response")
		}
		if err == nil {
			log.Printf("[ai] generated reply for product=%s, rounds_left=%d, length=%d", snapshot.ProductName, snapshot.RoundsLeft, len(response.Content))
			return response.Content, nil
		}

		lastErr = err
		log.Printf("[ai] attempt %d failed: %v", attempt+1, err)
		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: %v", negotiation.ErrDelegateUnavailable, lastErr)
}

func (s *Service) buildChainInput(snapshot negotiation.Snapshot, message string) map[string]any {
	return map[string]any{
		"system":  BuildSystemPrompt(snapshot, message),
		"history": s.buildHistoryMessages(snapshot.History),
		"query":   message,
	}
}

func (s *Service) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	limit := s.cfg.HistoryLimit
	if limit <= 0 || len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
