package web

import (
	"encoding/gob"
	"log/slog"
	"net/http"
)

const sessionName = "knjiznica"

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// flash queues a notice for the next page view. Kind is "error" or "success".
func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	session, err := s.Sessions.Get(r, sessionName)
	if err != nil {
		slog.Warn("discarding unreadable session", "error", err)
	}
	session.AddFlash(Flash{Kind: kind, Message: message})
	if err := session.Save(r, w); err != nil {
		slog.Error("failed to save session", "error", err)
	}
}

// takeFlashes returns and clears the queued notices.
func (s *Server) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := s.Sessions.Get(r, sessionName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		slog.Error("failed to save session", "error", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			flashes = append(flashes, fl)
		}
	}
	return flashes
}
