package delivery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danhigham/tgsend/internal/domain"
)

// ErrInvalidTarget means the target matched no peer. It is a local miss,
// never a transport failure.
var ErrInvalidTarget = errors.New("invalid target")

// SendError wraps a transport failure during resolution or sending.
type SendError struct {
	Op  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Messenger is the part of a Telegram session needed to deliver a message.
type Messenger interface {
	ResolveHandle(ctx context.Context, name string) (domain.HandleLookup, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	SendMessage(ctx context.Context, peer domain.Peer, text string) (int, error)
}

type Sender struct {
	messenger Messenger
	logger    *zap.Logger
}

func NewSender(m Messenger, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{messenger: m, logger: logger}
}

// ResolveAndSend resolves target and sends message to it exactly once.
func (s *Sender) ResolveAndSend(ctx context.Context, target, message string) (domain.SendResult, error) {
	peer, err := s.Resolve(ctx, target)
	if err != nil {
		return domain.SendResult{}, err
	}

	id, err := s.messenger.SendMessage(ctx, peer, message)
	if err != nil {
		return domain.SendResult{}, &SendError{Op: "send message", Err: err}
	}

	s.logger.Info("Message sent",
		zap.String("target", target),
		zap.Stringer("kind", peer.Kind),
		zap.Int("message_id", id),
	)
	return domain.SendResult{MessageID: id, Peer: peer}, nil
}

// Resolve maps target to a single peer.
func (s *Sender) Resolve(ctx context.Context, target string) (domain.Peer, error) {
	t := domain.ParseTarget(target)

	switch t.Kind {
	case domain.TargetHandle:
		l, err := s.messenger.ResolveHandle(ctx, t.Value)
		if err != nil {
			return domain.Peer{}, &SendError{Op: "resolve handle", Err: err}
		}
		if p, ok := l.Pick(); ok {
			return p, nil
		}
	case domain.TargetPhone:
		contacts, err := s.messenger.ListContacts(ctx)
		if err != nil {
			return domain.Peer{}, &SendError{Op: "list contacts", Err: err}
		}
		if c, ok := FindContact(contacts, t.Value); ok {
			return domain.UserPeer(c.ID, c.AccessHash), nil
		}
	}

	s.logger.Debug("Target not found", zap.String("target", target))
	return domain.Peer{}, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
}

// FindContact returns the first contact whose phone equals phone exactly.
func FindContact(contacts []domain.Contact, phone string) (domain.Contact, bool) {
	for _, c := range contacts {
		if c.Phone == phone {
			return c, true
		}
	}
	return domain.Contact{}, false
}
