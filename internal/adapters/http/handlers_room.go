package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/access"
	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

func (h *Handlers) home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{"Errors": takeFlashes(c)})
}

func (h *Handlers) about(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{})
}

// joinCall handles the patient's code-submission form. This is the only
// patient entry path: on success it mints the room credential the room
// view will demand.
func (h *Handlers) joinCall(c *gin.Context) {
	name := c.PostForm("name")
	surname := c.PostForm("surname")
	code := domain.RoomCode(c.PostForm("code"))

	if name == "" || surname == "" || !code.Valid() {
		flashError(c, "The code you entered is invalid.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	_, err := h.Calls.PatientJoin(c.Request.Context(), code)
	switch {
	case errors.Is(err, core.ErrCodeInvalid):
		flashError(c, "The code you entered is invalid.")
		c.Redirect(http.StatusFound, "/")
		return
	case errors.Is(err, core.ErrRoomFinished):
		flashError(c, "This call has already finished.")
		c.Redirect(http.StatusFound, "/")
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("patient join")
		flashError(c, "An internal server error occurred, please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	access.GrantPatient(c, code, name+" "+surname)
	c.Redirect(http.StatusFound, "/room/"+string(code))
}

// room renders the call page. Entry is gated purely on the room
// credential cookie; who the caller is (doctor vs patient) only decides
// how they are displayed.
func (h *Handlers) room(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	if !access.Authorize(access.Presented(c), code) {
		flashError(c, "Please complete the verification form on the home page.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	patientName, _ := c.Cookie(access.PatientCookie)
	userType := "doctor"
	displayName := ""
	if patientName != "" {
		userType = "patient"
		displayName = patientName
	} else {
		id, ok := h.currentUser(c)
		if !ok {
			// neither patient cookie nor doctor session
			c.Redirect(http.StatusFound, "/")
			return
		}
		doctor, err := h.Users.User(c.Request.Context(), id)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("room doctor lookup")
			c.String(http.StatusInternalServerError, "Internal server error: could not find the logged in user")
			return
		}
		displayName = doctor.DisplayName()
	}

	c.HTML(http.StatusOK, "room.html", gin.H{
		"RoomID":      string(code),
		"UserType":    userType,
		"DisplayName": displayName,
	})
}

// endCall marks the call finished and revokes the caller's room
// credential. Live signaling connections are left alone; they close
// when the participants leave the page.
func (h *Handlers) endCall(c *gin.Context) {
	code := domain.RoomCode(c.PostForm("roomId"))
	if !access.Authorize(access.Presented(c), code) {
		c.Status(http.StatusUnauthorized)
		return
	}

	if err := h.Calls.EndCall(c.Request.Context(), code); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(code)).Msg("end call")
		c.Status(http.StatusUnauthorized)
		return
	}

	access.Revoke(c)
	c.Status(http.StatusOK)
}
