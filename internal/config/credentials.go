package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid marks configuration problems detected before any network call.
var ErrInvalid = errors.New("invalid configuration")

// Key names a single credential the protocol client may ask for.
type Key int

const (
	KeyAPIID Key = iota + 1
	KeyAPIHash
	KeyPhoneNumber
	KeyVerificationCode
	KeyPassword
	KeySessionPath
)

func (k Key) String() string {
	switch k {
	case KeyAPIID:
		return "api_id"
	case KeyAPIHash:
		return "api_hash"
	case KeyPhoneNumber:
		return "phone_number"
	case KeyVerificationCode:
		return "verification_code"
	case KeyPassword:
		return "password"
	case KeySessionPath:
		return "session_pathname"
	default:
		return "unknown"
	}
}

// Lookup answers a credential request. The bool is false when the value
// was not supplied.
type Lookup func(Key) (string, bool)

// Credentials are the static login inputs of one invocation.
type Credentials struct {
	APIID       int
	APIHash     string
	Phone       string
	Code        string
	Password    string
	SessionPath string
}

// Validate reports every missing required field at once.
func (c Credentials) Validate() error {
	var missing []string
	if c.APIID <= 0 {
		missing = append(missing, "api id")
	}
	if c.APIHash == "" {
		missing = append(missing, "api hash")
	}
	if c.Phone == "" {
		missing = append(missing, "phone number")
	}
	if c.SessionPath == "" {
		missing = append(missing, "session file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// Lookup serves credential requests from the static values. Empty optional
// values are reported as absent.
func (c Credentials) Lookup(k Key) (string, bool) {
	var v string
	switch k {
	case KeyAPIID:
		if c.APIID <= 0 {
			return "", false
		}
		v = strconv.Itoa(c.APIID)
	case KeyAPIHash:
		v = c.APIHash
	case KeyPhoneNumber:
		v = c.Phone
	case KeyVerificationCode:
		v = c.Code
	case KeyPassword:
		v = c.Password
	case KeySessionPath:
		v = c.SessionPath
	}
	return v, v != ""
}
