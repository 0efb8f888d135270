package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
)

// consoleSession prints session messages, errors and redirects to the terminal.
type consoleSession struct {
	out    io.Writer
	errOut io.Writer
}

func newConsoleSession(out io.Writer, errOut io.Writer) *consoleSession {
	return &consoleSession{out: out, errOut: errOut}
}

func (s *consoleSession) Message(text string) {
	_, _ = fmt.Fprintf(s.out, messages.SessionLineFmt, color.GreenString(messages.SessionMessagePrefix), text)
}

func (s *consoleSession) Error(text string) {
	_, _ = fmt.Fprintf(s.errOut, messages.SessionLineFmt, color.RedString(messages.SessionErrorPrefix), text)
}

func (s *consoleSession) Redirect(target string) {
	_, _ = fmt.Fprint(s.out, color.HiBlackString(messages.SessionRedirectFmt, target))
}
