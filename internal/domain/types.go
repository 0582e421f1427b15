package domain

import "strings"

// Identity is the account a session is logged in as.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// DisplayName returns a human readable name for the identity.
func (i Identity) DisplayName() string {
	if i.FirstName != "" && i.LastName != "" {
		return i.FirstName + " " + i.LastName
	}
	if i.FirstName != "" {
		return i.FirstName
	}
	if i.Username != "" {
		return i.Username
	}
	return "Unknown"
}

type AuthState int

const (
	AuthStateNone AuthState = iota
	AuthStatePhone
	AuthStateCode
	AuthState2FA
	AuthStateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthStatePhone:
		return "phone"
	case AuthStateCode:
		return "code"
	case AuthState2FA:
		return "2fa"
	case AuthStateAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

func (s AuthState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText maps unrecognised stages to AuthStateNone.
func (s *AuthState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "phone":
		*s = AuthStatePhone
	case "code":
		*s = AuthStateCode
	case "2fa":
		*s = AuthState2FA
	case "authenticated":
		*s = AuthStateAuthenticated
	default:
		*s = AuthStateNone
	}
	return nil
}

// AuthOutcome tags an AuthResult.
type AuthOutcome int

const (
	Authenticated AuthOutcome = iota + 1
	NeedsCode
	NeedsPassword
	AuthFailed
)

func (o AuthOutcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case NeedsCode:
		return "needs code"
	case NeedsPassword:
		return "needs password"
	case AuthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AuthResult is the outcome of one login attempt. Identity is set only for
// Authenticated, Cause only for AuthFailed.
type AuthResult struct {
	Outcome  AuthOutcome
	Identity Identity
	Cause    error
}

// TargetKind tells how a target string should be resolved.
type TargetKind int

const (
	TargetUnknown TargetKind = iota
	TargetHandle
	TargetPhone
)

const (
	HandleMarker = "@"
	PhoneMarker  = "+"
)

// Target is a parsed recipient. Value is the handle without its marker, or
// the full phone number including the marker.
type Target struct {
	Kind  TargetKind
	Value string
}

// ParseTarget classifies s by its leading marker. A bare handle marker has
// nothing to resolve and is reported as unknown.
func ParseTarget(s string) Target {
	switch {
	case strings.HasPrefix(s, HandleMarker):
		name := strings.TrimPrefix(s, HandleMarker)
		if name == "" {
			return Target{Kind: TargetUnknown, Value: s}
		}
		return Target{Kind: TargetHandle, Value: name}
	case strings.HasPrefix(s, PhoneMarker):
		return Target{Kind: TargetPhone, Value: s}
	default:
		return Target{Kind: TargetUnknown, Value: s}
	}
}

// PeerKind tags a Peer.
type PeerKind int

const (
	PeerUser PeerKind = iota + 1
	PeerBasicGroup
	PeerChannel
)

func (k PeerKind) String() string {
	switch k {
	case PeerUser:
		return "user"
	case PeerBasicGroup:
		return "group"
	case PeerChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// Peer is an addressable endpoint. AccessHash is zero for basic groups.
type Peer struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

func UserPeer(id, accessHash int64) Peer {
	return Peer{Kind: PeerUser, ID: id, AccessHash: accessHash}
}

func BasicGroupPeer(id int64) Peer {
	return Peer{Kind: PeerBasicGroup, ID: id}
}

func ChannelPeer(id, accessHash int64) Peer {
	return Peer{Kind: PeerChannel, ID: id, AccessHash: accessHash}
}

// HandleLookup is what a handle resolves to. At most one field is expected
// to be set; when several are, User wins over BasicGroup over Channel.
type HandleLookup struct {
	User       *Peer
	BasicGroup *Peer
	Channel    *Peer
}

// Pick returns the first populated entry in priority order.
func (l HandleLookup) Pick() (Peer, bool) {
	for _, p := range []*Peer{l.User, l.BasicGroup, l.Channel} {
		if p != nil {
			return *p, true
		}
	}
	return Peer{}, false
}

// Contact is an entry of the account's contact list.
type Contact struct {
	ID         int64
	AccessHash int64
	Phone      string
	Username   string
	FirstName  string
	LastName   string
}

// SendResult describes a delivered message.
type SendResult struct {
	MessageID int
	Peer      Peer
}
