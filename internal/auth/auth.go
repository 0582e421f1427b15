// Package auth decides what a login attempt means for the caller: proceed,
// or ask the user for a code or a two-factor password on the next run.
package auth

import (
	"context"
	"errors"

	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/domain"
	"github.com/danhigham/tgsend/internal/telegram"
)

// Authorizer logs a session in.
type Authorizer interface {
	Login(ctx context.Context, lookup config.Lookup) (*domain.Identity, error)
}

// Authenticate validates creds and runs one login attempt. The returned
// error is set only for configuration problems and transport failures;
// every other outcome is carried by the result.
func Authenticate(ctx context.Context, a Authorizer, creds config.Credentials) (domain.AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return domain.AuthResult{}, err
	}

	id, err := a.Login(ctx, creds.Lookup)
	if err != nil && !errors.Is(err, telegram.ErrLoginIncomplete) {
		return domain.AuthResult{}, err
	}
	if err == nil && id != nil {
		return domain.AuthResult{Outcome: domain.Authenticated, Identity: *id}, nil
	}

	switch {
	case errors.Is(err, telegram.ErrLoginRejected):
		return domain.AuthResult{Outcome: domain.AuthFailed, Cause: err}, nil
	case creds.Code == "":
		return domain.AuthResult{Outcome: domain.NeedsCode}, nil
	case creds.Password == "" && errors.Is(err, telegram.ErrPasswordNeeded):
		return domain.AuthResult{Outcome: domain.NeedsPassword}, nil
	default:
		if err == nil {
			err = telegram.ErrLoginIncomplete
		}
		return domain.AuthResult{Outcome: domain.AuthFailed, Cause: err}, nil
	}
}
