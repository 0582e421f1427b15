package app

// ExitCode is the process status of one run. The values are stable so
// scripts can re-run with the missing input.
type ExitCode int

const (
	Success ExitCode = iota
	AuthorizationRequired
	CodeRequired
	PasswordRequired
	MessageSendFailed
	ConnectionFailed
	InvalidTarget
	UnknownError
)

func (c ExitCode) String() string {
	switch c {
	case Success:
		return "success"
	case AuthorizationRequired:
		return "authorization required"
	case CodeRequired:
		return "code required"
	case PasswordRequired:
		return "password required"
	case MessageSendFailed:
		return "message send failed"
	case ConnectionFailed:
		return "connection failed"
	case InvalidTarget:
		return "invalid target"
	default:
		return "unknown error"
	}
}
