package Otp

import (
	"context"
	"errors"
	"log"
	"strings"
)

const CodeLength = 4

var (
	// ErrIncomplete means fewer digits than CodeLength were entered.
	ErrIncomplete = errors.New("otp code incomplete")
	// ErrMismatch means a complete code did not verify.
	ErrMismatch = errors.New("otp code mismatch")
)

// Provider abstracts one-time-code dispatch and verification so the mock can
// be swapped for a real SMS gateway without touching the controllers.
type Provider interface {
	Request(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone, code string) error
}

// MockProvider accepts the single literal code "1234" and never sends an
// SMS. It is a development stand-in, not an authentication mechanism.
type MockProvider struct{}

const mockCode = "1234"

func (MockProvider) Request(ctx context.Context, phone string) error {
	log.Printf("mock otp requested for %s", maskPhone(phone))
	return nil
}

func (MockProvider) Verify(ctx context.Context, phone, code string) error {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != CodeLength {
		return ErrIncomplete
	}
	if trimmed != mockCode {
		return ErrMismatch
	}
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("x", len(phone)-4) + phone[len(phone)-4:]
}
