package router

import (
	"time"

	tg "github.com/arkade-01/p2pbot/internal/telegram"
	"github.com/arkade-01/p2pbot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// SessionTextHandler consumes a free-text update when the sender has a
// pending conversation session. It reports whether the update was handled.
type SessionTextHandler func(c tele.Context) (bool, error)

// TextOptions controls routing of free-text updates.
type TextOptions struct {
	// Session is consulted first; a pending conversation owns the text.
	Session SessionTextHandler
	// UnknownText handles text that matched neither a session nor a command.
	// Nil means unmatched text is silently passed through.
	UnknownText tele.HandlerFunc
}

// TextRoute builds the handler for free-text updates. Precedence is fixed:
// pending session, then bare command lookup, then registry fallback, then
// UnknownText.
func TextRoute(reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if opts.Session != nil {
			handled, err := opts.Session(c)
			if handled || err != nil {
				return handleWithSummary(c, "session", start, func() error { return err })
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
