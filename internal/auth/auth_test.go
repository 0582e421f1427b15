package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gotd/td/tgerr"

	"github.com/danhigham/tgsend/internal/auth"
	"github.com/danhigham/tgsend/internal/config"
	"github.com/danhigham/tgsend/internal/domain"
	"github.com/danhigham/tgsend/internal/telegram"
)

type fakeAuthorizer struct {
	id    *domain.Identity
	err   error
	calls int
	seen  map[config.Key]string
}

func (f *fakeAuthorizer) Login(ctx context.Context, lookup config.Lookup) (*domain.Identity, error) {
	f.calls++
	f.seen = make(map[config.Key]string)
	for _, k := range []config.Key{config.KeyAPIID, config.KeyPhoneNumber, config.KeyVerificationCode, config.KeyPassword} {
		if v, ok := lookup(k); ok {
			f.seen[k] = v
		}
	}
	return f.id, f.err
}

func creds() config.Credentials {
	return config.Credentials{
		APIID:       12345,
		APIHash:     "abcdef",
		Phone:       "+15551234567",
		SessionPath: "telegram_session.dat",
	}
}

func TestAuthenticate_Success(t *testing.T) {
	a := &fakeAuthorizer{id: &domain.Identity{ID: 1, Username: "me"}}

	res, err := auth.Authenticate(context.Background(), a, creds())
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if res.Outcome != domain.Authenticated {
		t.Fatalf("Outcome = %v, want authenticated", res.Outcome)
	}
	if res.Identity.ID != 1 {
		t.Errorf("Identity.ID = %d, want 1", res.Identity.ID)
	}
	if a.seen[config.KeyAPIID] != "12345" {
		t.Errorf("lookup api_id = %q, want 12345", a.seen[config.KeyAPIID])
	}
	if _, ok := a.seen[config.KeyVerificationCode]; ok {
		t.Error("verification code should be absent")
	}
}

func TestAuthenticate_InvalidConfigSkipsLogin(t *testing.T) {
	tests := []func(*config.Credentials){
		func(c *config.Credentials) { c.APIID = 0 },
		func(c *config.Credentials) { c.APIHash = "" },
		func(c *config.Credentials) { c.Phone = "" },
	}

	for i, mutate := range tests {
		a := &fakeAuthorizer{}
		c := creds()
		mutate(&c)

		_, err := auth.Authenticate(context.Background(), a, c)
		if !errors.Is(err, config.ErrInvalid) {
			t.Errorf("case %d: error = %v, want ErrInvalid", i, err)
		}
		if a.calls != 0 {
			t.Errorf("case %d: Login called %d times, want 0", i, a.calls)
		}
	}
}

func rejected(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", telegram.ErrLoginRejected, op, err)
}

func TestAuthenticate_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		password string
		loginErr error
		want     domain.AuthOutcome
	}{
		{"no identity, no code", "", "", nil, domain.NeedsCode},
		{"code needed, no code", "", "", telegram.ErrCodeNeeded, domain.NeedsCode},
		{"2fa, code, no password", "12345", "", telegram.ErrPasswordNeeded, domain.NeedsPassword},
		{"2fa, code and password", "12345", "pw", telegram.ErrPasswordNeeded, domain.AuthFailed},
		{"code, no 2fa", "12345", "", nil, domain.AuthFailed},
		{"code resent", "12345", "", telegram.ErrCodeResent, domain.AuthFailed},
		{"password rejected, no code", "", "wrong", rejected("check password", tgerr.New(400, "PASSWORD_HASH_INVALID")), domain.AuthFailed},
		{"code rejected", "99999", "", rejected("sign in", tgerr.New(400, "PHONE_CODE_INVALID")), domain.AuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := creds()
			c.Code = tt.code
			c.Password = tt.password
			a := &fakeAuthorizer{err: tt.loginErr}

			res, err := auth.Authenticate(context.Background(), a, c)
			if err != nil {
				t.Fatalf("Authenticate() error: %v", err)
			}
			if res.Outcome != tt.want {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.want)
			}
			if res.Outcome == domain.AuthFailed && res.Cause == nil {
				t.Error("failed result without cause")
			}
		})
	}
}

func TestAuthenticate_RejectedPasswordKeepsCause(t *testing.T) {
	c := creds()
	c.Password = "wrong"
	loginErr := rejected("check password", tgerr.New(400, "PASSWORD_HASH_INVALID"))
	a := &fakeAuthorizer{err: loginErr}

	res, err := auth.Authenticate(context.Background(), a, c)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if res.Outcome != domain.AuthFailed {
		t.Fatalf("Outcome = %v, want auth failed", res.Outcome)
	}
	if !tgerr.Is(res.Cause, "PASSWORD_HASH_INVALID") {
		t.Errorf("Cause = %v, want PASSWORD_HASH_INVALID", res.Cause)
	}
}

func TestAuthenticate_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	a := &fakeAuthorizer{err: boom}

	_, err := auth.Authenticate(context.Background(), a, creds())
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}
