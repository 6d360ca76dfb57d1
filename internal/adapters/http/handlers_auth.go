package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/domain"
)

// session cookie lifetime mirrors the identity provider's 5-day tokens.
const sessionMaxAge = 60 * 60 * 24 * 5

func (h *Handlers) loginPage(c *gin.Context) {
	if _, ok := h.currentUser(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// login exchanges the identity provider's idToken for a session token.
// With the signup flag set it also creates the doctor's account record.
func (h *Handlers) login(c *gin.Context) {
	idToken := c.PostForm("idToken")
	isSignup := c.PostForm("signup") != ""

	token, err := h.Identity.CreateSessionToken(c.Request.Context(), idToken)
	if err != nil {
		c.String(http.StatusUnauthorized, "Unauthorised request")
		return
	}

	if isSignup {
		id, err := h.Identity.VerifyCredential(c.Request.Context(), token)
		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorised request")
			return
		}
		user, err := domain.NewUser(id, c.PostForm("name"), c.PostForm("surname"))
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid name")
			return
		}
		if err := h.Users.Put(c.Request.Context(), user); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("signup user create")
			c.String(http.StatusInternalServerError, "Internal server error")
			return
		}
		log.Info().Str("module", "adapters.http").Str("doctor", string(id)).Msg("doctor signed up")
	}

	c.SetCookie(sessionCookie, token, sessionMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handlers) signupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{})
}

func (h *Handlers) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err != nil || token == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handlers) account(c *gin.Context) {
	id, ok := h.currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	user, err := h.Users.User(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("account lookup")
		c.String(http.StatusInternalServerError, "Could not find the user")
		return
	}
	c.HTML(http.StatusOK, "account.html", gin.H{"User": user})
}
