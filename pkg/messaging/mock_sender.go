package messaging

import (
	"context"
	"sync"
)

// MockMessageSender records sent messages in memory for tests and dry runs.
type MockMessageSender struct {
	mu       sync.Mutex
	messages []*RoundMessage
	err      error
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// FailWith makes every subsequent send return err.
func (m *MockMessageSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SendRoundMessage stores the message.
func (m *MockMessageSender) SendRoundMessage(_ context.Context, msg *RoundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns the messages sent so far.
func (m *MockMessageSender) Messages() []*RoundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*RoundMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
