package telegram

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/domain"
	"github.com/danhigham/tgsend/internal/state"
)

// DefaultConnectTimeout bounds how long Dial waits for a usable connection.
const DefaultConnectTimeout = 30 * time.Second

var (
	errConnectTimeout   = errors.New("timed out waiting for connection")
	errConnectionClosed = errors.New("connection closed before the session started")
)

// Dialer opens gotd sessions using credentials from a lookup.
type Dialer struct {
	lookup         config.Lookup
	connectTimeout time.Duration
	logger         *zap.Logger
}

// NewDialer creates a Dialer. A non-positive timeout selects DefaultConnectTimeout.
func NewDialer(lookup config.Lookup, connectTimeout time.Duration, logger *zap.Logger) *Dialer {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialer{
		lookup:         lookup,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

// Dial connects to Telegram, runs fn and closes the connection when fn
// returns. Failures before fn starts are reported as *ConnectionError.
func (d *Dialer) Dial(ctx context.Context, fn SessionFunc) error {
	apiID, apiHash, sessionPath, err := d.appCredentials()
	if err != nil {
		return err
	}

	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		Logger:         d.logger.Named("gotd"),
		UpdateHandler:  logUpdates(d.logger.Named("updates")),
		SessionStorage: &session.FileStorage{Path: sessionPath},
	})

	return d.connect(ctx, client.Run, func(ctx context.Context) error {
		d.logger.Debug("Connected", zap.String("session", sessionPath))
		api := client.API()
		return fn(ctx, &GotdClient{
			client: client,
			api:    api,
			sender: message.NewSender(api),
			logger: d.logger,
		})
	})
}

// runFunc has the shape of telegram.Client.Run.
type runFunc func(ctx context.Context, f func(ctx context.Context) error) error

const (
	phaseConnecting int32 = iota
	phaseConnected
	phaseTimedOut
)

// connect calls run and hands f the connected context. Whoever moves the
// phase out of phaseConnecting first wins: either f starts or the connect
// timeout cancels run. Once f has started its result is returned unchanged.
func (d *Dialer) connect(ctx context.Context, run runFunc, f func(ctx context.Context) error) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var phase atomic.Int32
	timer := time.AfterFunc(d.connectTimeout, func() {
		if phase.CompareAndSwap(phaseConnecting, phaseTimedOut) {
			cancel(errConnectTimeout)
		}
	})
	defer timer.Stop()

	err := run(runCtx, func(ctx context.Context) error {
		if !phase.CompareAndSwap(phaseConnecting, phaseConnected) {
			return &ConnectionError{Err: errConnectTimeout}
		}
		timer.Stop()
		return f(ctx)
	})
	if phase.Load() == phaseConnected {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if phase.Load() == phaseTimedOut {
		return &ConnectionError{Err: errConnectTimeout}
	}
	return &ConnectionError{Err: cmp.Or(err, errConnectionClosed)}
}

func (d *Dialer) appCredentials() (int, string, string, error) {
	rawID, ok := d.lookup(config.KeyAPIID)
	if !ok {
		return 0, "", "", fmt.Errorf("%w: api id not supplied", config.ErrInvalid)
	}
	apiID, err := strconv.Atoi(rawID)
	if err != nil {
		return 0, "", "", fmt.Errorf("%w: api id: %w", config.ErrInvalid, err)
	}
	apiHash, ok := d.lookup(config.KeyAPIHash)
	if !ok {
		return 0, "", "", fmt.Errorf("%w: api hash not supplied", config.ErrInvalid)
	}
	sessionPath, ok := d.lookup(config.KeySessionPath)
	if !ok {
		return 0, "", "", fmt.Errorf("%w: session file not supplied", config.ErrInvalid)
	}
	return apiID, apiHash, sessionPath, nil
}

// GotdClient implements the Client interface using gotd/td.
type GotdClient struct {
	client *telegram.Client
	api    *tg.Client
	sender *message.Sender
	logger *zap.Logger
}

// Login authenticates the session, reusing the stored session when it is
// already authorized.
func (c *GotdClient) Login(ctx context.Context, lookup config.Lookup) (*domain.Identity, error) {
	sessionPath, ok := lookup(config.KeySessionPath)
	if !ok {
		return nil, fmt.Errorf("%w: session file not supplied", config.ErrInvalid)
	}

	flow := newLoginFlow(c.client.Auth(), lookup, state.ForSession(sessionPath), c.logger.Named("auth"))
	self, err := flow.Run(ctx)
	if err != nil {
		return nil, err
	}

	id := identityFromUser(self)
	c.logger.Info("Logged in",
		zap.Int64("user_id", id.ID),
		zap.String("name", id.DisplayName()),
	)
	return &id, nil
}

// ResolveHandle looks up a public username. Unknown usernames resolve to
// an empty lookup rather than an error.
func (c *GotdClient) ResolveHandle(ctx context.Context, name string) (domain.HandleLookup, error) {
	resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: name,
	})
	if tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID") {
		c.logger.Debug("Username not found", zap.String("username", name), zap.Error(err))
		return domain.HandleLookup{}, nil
	}
	if err != nil {
		return domain.HandleLookup{}, fmt.Errorf("resolve username: %w", err)
	}
	return lookupFromResolved(resolved), nil
}

// ListContacts fetches the full contact list.
func (c *GotdClient) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	result, err := c.api.ContactsGetContacts(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}

	contacts, ok := result.(*tg.ContactsContacts)
	if !ok {
		return nil, fmt.Errorf("unexpected contacts type: %T", result)
	}
	return contactsFromUsers(contacts.Users), nil
}

// SendMessage sends text to peer as-is and returns the new message id.
func (c *GotdClient) SendMessage(ctx context.Context, peer domain.Peer, text string) (int, error) {
	input, err := inputPeer(peer)
	if err != nil {
		return 0, err
	}

	upd, err := c.sender.To(input).Text(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}

	id, ok := sentMessageID(upd)
	if !ok {
		c.logger.Warn("Sent message id not found", zap.String("updates", upd.TypeName()))
	}
	return id, nil
}
