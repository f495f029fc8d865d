package mocks

import "context"

// MockSMSService implements domain.SMSService for testing.
type MockSMSService struct {
	SendSMSFunc func(ctx context.Context, to, body string) (string, error)

	// Sent records every successful default-path send for assertions.
	Sent []SentSMS
}

// SentSMS captures one outbound message.
type SentSMS struct {
	To   string
	Body string
}

// NewMockSMSService creates a MockSMSService with default behaviors.
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{}
}

func (m *MockSMSService) SendSMS(ctx context.Context, to, body string) (string, error) {
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(ctx, to, body)
	}
	m.Sent = append(m.Sent, SentSMS{To: to, Body: body})
	return "SM-mock", nil
}
