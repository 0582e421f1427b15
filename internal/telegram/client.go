package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/domain"
)

var (
	// ErrLoginIncomplete means the login needs input that was not supplied
	// or was rejected. Transport failures never wrap it.
	ErrLoginIncomplete = errors.New("login incomplete")
	ErrCodeNeeded      = fmt.Errorf("%w: verification code required", ErrLoginIncomplete)
	ErrPasswordNeeded  = fmt.Errorf("%w: two-factor password required", ErrLoginIncomplete)
	// ErrCodeResent is returned when a code was supplied but no matching
	// code request was pending, so a new code had to be sent.
	ErrCodeResent = fmt.Errorf("%w: no pending code request, a new code was sent", ErrLoginIncomplete)
	// ErrLoginRejected wraps a code or password the server refused.
	ErrLoginRejected = fmt.Errorf("%w: credentials rejected", ErrLoginIncomplete)
)

// ConnectionError reports that the session never became usable.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Client is the set of Telegram operations available inside a session.
type Client interface {
	// Login returns the logged-in identity. A nil identity comes with an
	// error wrapping ErrLoginIncomplete when more input is needed.
	Login(ctx context.Context, lookup config.Lookup) (*domain.Identity, error)
	ResolveHandle(ctx context.Context, name string) (domain.HandleLookup, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	SendMessage(ctx context.Context, peer domain.Peer, text string) (int, error)
}

// SessionFunc runs with a connected client. The session is released when
// it returns.
type SessionFunc func(ctx context.Context, c Client) error
