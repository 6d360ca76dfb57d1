package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/domain"
)

const sessionCookie = "session"

// flashError queues a one-shot error message for the next page render.
func flashError(c *gin.Context, msg string) {
	s := sessions.Default(c)
	s.AddFlash(msg, "error")
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("flash save")
	}
}

// takeFlashes pops queued error messages.
func takeFlashes(c *gin.Context) []string {
	s := sessions.Default(c)
	raw := s.Flashes("error")
	if len(raw) > 0 {
		if err := s.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("flash save")
		}
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// currentUser resolves the session cookie to a doctor id. False for a
// missing, expired or forged token.
func (h *Handlers) currentUser(c *gin.Context) (domain.UserID, bool) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return "", false
	}
	id, err := h.Identity.VerifyCredential(c.Request.Context(), token)
	if err != nil {
		return "", false
	}
	return id, true
}
