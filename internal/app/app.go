package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danhigham/tgsend/internal/auth"
	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/delivery"
	"github.com/danhigham/tgsend/internal/domain"
	"github.com/danhigham/tgsend/internal/telegram"
	"github.com/danhigham/tgsend/internal/ui"
)

var errNoSession = errors.New("session ended before it started")

// Dialer opens one session and releases it when fn returns.
type Dialer interface {
	Dial(ctx context.Context, fn telegram.SessionFunc) error
}

// Options is the validated input of one run.
type Options struct {
	Credentials config.Credentials
	Target      string
	Message     string
}

func (o Options) Validate() error {
	if err := o.Credentials.Validate(); err != nil {
		return err
	}
	if o.Target == "" {
		return fmt.Errorf("%w: missing target", config.ErrInvalid)
	}
	if o.Message == "" {
		return fmt.Errorf("%w: missing message", config.ErrInvalid)
	}
	return nil
}

type App struct {
	dialer   Dialer
	reporter *ui.Reporter
	logger   *zap.Logger
}

func New(dialer Dialer, reporter *ui.Reporter, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		dialer:   dialer,
		reporter: reporter,
		logger:   logger,
	}
}

// Run logs in, delivers the message and maps the outcome to an exit code.
// The session is opened at most once and is always released.
func (a *App) Run(ctx context.Context, opts Options) ExitCode {
	if err := opts.Validate(); err != nil {
		a.reporter.Failed(err)
		return UnknownError
	}

	code := UnknownError
	started := false
	err := a.dialer.Dial(ctx, func(ctx context.Context, c telegram.Client) error {
		started = true
		res, err := auth.Authenticate(ctx, c, opts.Credentials)
		if err != nil {
			return err
		}

		switch res.Outcome {
		case domain.Authenticated:
			a.logger.Debug("Authenticated", zap.Int64("user_id", res.Identity.ID))
		case domain.NeedsCode:
			a.reporter.CodeRequired()
			code = CodeRequired
			return nil
		case domain.NeedsPassword:
			a.reporter.PasswordRequired()
			code = PasswordRequired
			return nil
		default:
			a.logger.Warn("Authorization failed", zap.Error(res.Cause))
			a.reporter.AuthorizationRequired(res.Cause)
			code = AuthorizationRequired
			return nil
		}

		code = a.send(ctx, c, opts)
		return nil
	})
	if err == nil && !started {
		err = &telegram.ConnectionError{Err: errNoSession}
	}
	if err == nil {
		return code
	}

	var connErr *telegram.ConnectionError
	switch {
	case errors.As(err, &connErr):
		a.logger.Error("Connection failed", zap.Error(err))
		a.reporter.ConnectionFailed(connErr.Err)
		return ConnectionFailed
	default:
		a.logger.Error("Run failed", zap.Error(err))
		a.reporter.Failed(err)
		return UnknownError
	}
}

func (a *App) send(ctx context.Context, m delivery.Messenger, opts Options) ExitCode {
	res, err := delivery.NewSender(m, a.logger.Named("delivery")).ResolveAndSend(ctx, opts.Target, opts.Message)

	var sendErr *delivery.SendError
	switch {
	case err == nil:
		a.reporter.Sent(res)
		return Success
	case errors.Is(err, delivery.ErrInvalidTarget):
		a.reporter.InvalidTarget(opts.Target)
		return InvalidTarget
	case errors.As(err, &sendErr):
		a.logger.Error("Send failed", zap.Error(err))
		a.reporter.SendFailed(err)
		return MessageSendFailed
	default:
		a.reporter.Failed(err)
		return UnknownError
	}
}
