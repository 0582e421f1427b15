package telegram

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/domain"
	"github.com/danhigham/tgsend/internal/state"
)

// authAPI is the part of gotd's auth.Client the login flow drives.
type authAPI interface {
	Status(ctx context.Context) (*auth.Status, error)
	SendCode(ctx context.Context, phone string, options auth.SendCodeOptions) (tg.AuthSentCodeClass, error)
	SignIn(ctx context.Context, phone, code, codeHash string) (*tg.AuthAuthorization, error)
	Password(ctx context.Context, password string) (*tg.AuthAuthorization, error)
}

// loginFlow answers gotd's login steps from static credentials. Unlike
// auth.Flow it never blocks waiting for input: a missing value ends the run
// and the progress made so far is kept in the pending store.
type loginFlow struct {
	api     authAPI
	lookup  config.Lookup
	pending *state.Store
	logger  *zap.Logger
}

func newLoginFlow(api authAPI, lookup config.Lookup, pending *state.Store, logger *zap.Logger) *loginFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loginFlow{
		api:     api,
		lookup:  lookup,
		pending: pending,
		logger:  logger,
	}
}

func (f *loginFlow) Run(ctx context.Context) (*tg.User, error) {
	status, err := f.api.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth status: %w", err)
	}
	if status.Authorized {
		if status.User == nil {
			return nil, errors.New("auth status: authorized without user")
		}
		if err := f.pending.Clear(); err != nil {
			f.logger.Warn("Failed to clear pending login", zap.Error(err))
		}
		return status.User, nil
	}

	phone, ok := f.lookup(config.KeyPhoneNumber)
	if !ok {
		return nil, fmt.Errorf("%w: phone number not supplied", ErrLoginIncomplete)
	}
	code, hasCode := f.lookup(config.KeyVerificationCode)
	password, hasPassword := f.lookup(config.KeyPassword)

	p, err := f.pending.Load()
	if err != nil {
		return nil, err
	}
	if !p.Matches(phone) {
		p = state.PendingLogin{}
	}

	switch {
	case p.Stage == domain.AuthState2FA:
		if !hasPassword {
			return nil, ErrPasswordNeeded
		}
		return f.checkPassword(ctx, password)
	case hasCode && p.Stage == domain.AuthStateCode:
		return f.signIn(ctx, p, code, password, hasPassword)
	default:
		return f.sendCode(ctx, phone, hasCode)
	}
}

func (f *loginFlow) sendCode(ctx context.Context, phone string, codeSupplied bool) (*tg.User, error) {
	sent, err := f.api.SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("send code: %w", err)
	}

	switch s := sent.(type) {
	case *tg.AuthSentCode:
		p := state.PendingLogin{
			Phone:    phone,
			CodeHash: s.PhoneCodeHash,
			Stage:    domain.AuthStateCode,
		}
		if err := f.pending.Save(p); err != nil {
			return nil, err
		}
		f.logger.Info("Verification code sent", zap.String("delivery", s.Type.TypeName()))
		if codeSupplied {
			return nil, ErrCodeResent
		}
		return nil, ErrCodeNeeded
	case *tg.AuthSentCodeSuccess:
		a, ok := s.Authorization.(*tg.AuthAuthorization)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected authorization %T", ErrLoginIncomplete, s.Authorization)
		}
		return f.complete(a)
	default:
		return nil, fmt.Errorf("unexpected sent code type: %T", sent)
	}
}

func (f *loginFlow) signIn(ctx context.Context, p state.PendingLogin, code, password string, hasPassword bool) (*tg.User, error) {
	a, err := f.api.SignIn(ctx, p.Phone, code, p.CodeHash)
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		p.Stage = domain.AuthState2FA
		if err := f.pending.Save(p); err != nil {
			return nil, err
		}
		if !hasPassword {
			return nil, ErrPasswordNeeded
		}
		return f.checkPassword(ctx, password)
	}
	if err != nil {
		return nil, f.rejected("sign in", err)
	}
	return f.complete(a)
}

func (f *loginFlow) checkPassword(ctx context.Context, password string) (*tg.User, error) {
	a, err := f.api.Password(ctx, password)
	if err != nil {
		return nil, f.rejected("check password", err)
	}
	return f.complete(a)
}

// rejected separates answers the server refused from transport failures.
func (f *loginFlow) rejected(op string, err error) error {
	var signUp *auth.SignUpRequired
	switch {
	case tgerr.Is(err, "PHONE_CODE_EXPIRED"):
		if cerr := f.pending.Clear(); cerr != nil {
			f.logger.Warn("Failed to clear pending login", zap.Error(cerr))
		}
		return fmt.Errorf("%w: %s: %w", ErrLoginRejected, op, err)
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EMPTY", "PASSWORD_HASH_INVALID"),
		errors.Is(err, auth.ErrPasswordInvalid),
		errors.As(err, &signUp):
		return fmt.Errorf("%w: %s: %w", ErrLoginRejected, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (f *loginFlow) complete(a *tg.AuthAuthorization) (*tg.User, error) {
	if err := f.pending.Clear(); err != nil {
		f.logger.Warn("Failed to clear pending login", zap.Error(err))
	}
	u, ok := a.User.(*tg.User)
	if !ok {
		return nil, fmt.Errorf("unexpected user type: %T", a.User)
	}
	return u, nil
}
