package ui

import (
	"errors"
	"fmt"
	"io"

	"charm.land/lipgloss/v2"

	"github.com/danhigham/tgsend/internal/domain"
)

// Reporter prints run outcomes for a human. Results go to out, problems
// and hints to errOut.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
}

func NewReporter(out, errOut io.Writer) *Reporter {
	return &Reporter{out: out, errOut: errOut}
}

func (r *Reporter) Sent(res domain.SendResult) {
	lipgloss.Fprintln(r.out, successStyle.Render(fmt.Sprintf("Message sent. ID: %d", res.MessageID)))
}

func (r *Reporter) CodeRequired() {
	r.hint("Authorization code required.", "--code")
}

func (r *Reporter) PasswordRequired() {
	r.hint("Two-factor password required.", "--password")
}

func (r *Reporter) AuthorizationRequired(cause error) {
	r.problem("Authorization required", cause)
}

func (r *Reporter) InvalidTarget(target string) {
	lipgloss.Fprintln(r.errOut, errorStyle.Render(fmt.Sprintf("No user, group or channel found for %q", target)))
}

func (r *Reporter) SendFailed(err error) {
	r.problem("Failed to send message", err)
}

func (r *Reporter) ConnectionFailed(err error) {
	r.problem("Connection failed", err)
}

func (r *Reporter) Failed(err error) {
	r.problem("Error", err)
}

func (r *Reporter) hint(msg, flag string) {
	lipgloss.Fprintln(r.errOut, hintStyle.Render(msg+" Run again with"), flagStyle.Render(flag))
}

// problem prints err and, on a second line, the error it wraps.
func (r *Reporter) problem(prefix string, err error) {
	if err == nil {
		lipgloss.Fprintln(r.errOut, errorStyle.Render(prefix))
		return
	}
	lipgloss.Fprintln(r.errOut, errorStyle.Render(prefix+": "+err.Error()))
	if inner := cause(err); inner != nil {
		lipgloss.Fprintln(r.errOut, causeStyle.Render("Cause: "+inner.Error()))
	}
}

// cause returns the error err wraps. For errors wrapping several, the last
// one is the most specific.
func cause(err error) error {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := multi.Unwrap(); len(errs) > 0 {
			return errs[len(errs)-1]
		}
		return nil
	}
	return errors.Unwrap(err)
}
