package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/haggle/backend/internal/config"
	"github.com/zhouzirui/haggle/backend/internal/model/chat"
	"github.com/zhouzirui/haggle/backend/internal/model/product"
	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

type fakeChatModel struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	inputs [][]*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *fakeChatModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func newTestService(t *testing.T, chatModel *fakeChatModel, cfg config.AIConfig) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), chatModel, cfg)
	require.NoError(t, err)
	svc.backoff = time.Millisecond
	return svc
}

func snapshotAfter(t *testing.T, inputs ...string) negotiation.Snapshot {
	t.Helper()
	n, err := negotiation.New(product.Default(), nil)
	require.NoError(t, err)
	for _, in := range inputs {
		n.Submit(context.Background(), in)
	}
	return n.Snapshot()
}

func TestGenerateSendsTwoEntryExchange(t *testing.T) {
	chatModel := &fakeChatModel{reply: "It comes with a two-year warranty."}
	svc := newTestService(t, chatModel, config.AIConfig{})

	reply, err := svc.Generate(context.Background(), snapshotAfter(t, "1700"), "Is there a warranty?")
	require.NoError(t, err)
	assert.Equal(t, "It comes with a two-year warranty.", reply)

	require.Len(t, chatModel.inputs, 1)
	messages := chatModel.inputs[0]
	require.Len(t, messages, 2)
	assert.Equal(t, schema.System, messages[0].Role)
	assert.Equal(t, schema.User, messages[1].Role)
	assert.Equal(t, "Is there a warranty?", messages[1].Content)

	system := messages[0].Content
	assert.Contains(t, system, "Quantum Leap Laptop X1")
	assert.Contains(t, system, "$2000.00")
	assert.Contains(t, system, "$1640.00")
	assert.Contains(t, system, "$1850.00")
	assert.Contains(t, system, "18%")
	assert.Contains(t, system, "Rounds Left: 7")
}

func TestGenerateIncludesHistoryWhenConfigured(t *testing.T) {
	chatModel := &fakeChatModel{reply: "Sure."}
	svc := newTestService(t, chatModel, config.AIConfig{HistoryLimit: 2})

	snap := snapshotAfter(t)
	snap.History = []chat.Message{
		{Sender: chat.SenderUser, Content: "1700"},
		{Sender: chat.SenderAssistant, Content: "I can lower the price to $1850.00."},
		{Sender: chat.SenderUser, Content: "1800"},
		{Sender: chat.SenderAssistant, Content: "I can lower the price to $1825.00."},
	}

	_, err := svc.Generate(context.Background(), snap, "any colors?")
	require.NoError(t, err)

	messages := chatModel.inputs[0]
	require.Len(t, messages, 4)
	assert.Equal(t, "1800", messages[1].Content)
	assert.Equal(t, schema.Assistant, messages[2].Role)
	assert.Equal(t, "any colors?", messages[3].Content)
}

func TestGenerateFailureIsDelegateUnavailable(t *testing.T) {
	chatModel := &fakeChatModel{err: errors.New("connection refused")}
	svc := newTestService(t, chatModel, config.AIConfig{MaxRetries: 2})

	_, err := svc.Generate(context.Background(), snapshotAfter(t), "hello")

	require.Error(t, err)
	assert.True(t, errors.Is(err, negotiation.ErrDelegateUnavailable))
	assert.Equal(t, 3, chatModel.calls)
}

func TestGenerateEmptyReplyIsDelegateUnavailable(t *testing.T) {
	chatModel := &fakeChatModel{reply: "  "}
	svc := newTestService(t, chatModel, config.AIConfig{})

	_, err := svc.Generate(context.Background(), snapshotAfter(t), "hello")

	assert.True(t, errors.Is(err, negotiation.ErrDelegateUnavailable))
}

func TestGenerateStopsRetryingWhenCancelled(t *testing.T) {
	chatModel := &fakeChatModel{err: errors.New("boom")}
	svc := newTestService(t, chatModel, config.AIConfig{MaxRetries: 5})
	svc.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Generate(ctx, snapshotAfter(t), "hello")

	assert.True(t, errors.Is(err, negotiation.ErrDelegateUnavailable))
	assert.Equal(t, 1, chatModel.calls)
}

func TestNewServiceWithModelRequiresModel(t *testing.T) {
	_, err := NewServiceWithModel(context.Background(), nil, config.AIConfig{})
	assert.Error(t, err)
}

func TestEngineFallsBackThroughService(t *testing.T) {
	chatModel := &fakeChatModel{err: errors.New("upstream 503")}
	svc := newTestService(t, chatModel, config.AIConfig{})

	n, err := negotiation.New(product.Default(), svc)
	require.NoError(t, err)

	res := n.Submit(context.Background(), "what's the battery life?")

	assert.Equal(t, negotiation.OutcomeFallback, res.Kind)
	assert.Equal(t, 8, res.Snapshot.RoundsLeft)
}
