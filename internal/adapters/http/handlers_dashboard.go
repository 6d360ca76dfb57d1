package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mediochat/mediochat/internal/access"
	"github.com/mediochat/mediochat/internal/app"
	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

func (h *Handlers) dashboard(c *gin.Context) {
	id, ok := h.currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	today, upcoming, err := h.Calls.Dashboard(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("dashboard")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"DoctorID":      string(id),
		"TodaysCalls":   today,
		"UpcomingCalls": upcoming,
		"Errors":        takeFlashes(c),
	})
}

// createCall schedules a call (or starts one immediately) and mails the
// patient the 6-digit access code.
func (h *Handlers) createCall(c *gin.Context) {
	id, ok := h.currentUser(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Unauthorised request: user is not logged in")
		return
	}

	startNow := c.PostForm("startNow") == "on"
	var startsAt time.Time
	if !startNow {
		var err error
		startsAt, err = time.ParseInLocation("2006-01-02T15:04",
			c.PostForm("startDate")+"T"+c.PostForm("startTime"), time.Local)
		if err != nil {
			flashError(c, "Please select a date and time in the future.")
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
	}

	room, err := h.Calls.CreateCall(c.Request.Context(), app.CreateCallInput{
		DoctorID:     id,
		PatientEmail: c.PostForm("email"),
		StartNow:     startNow,
		StartsAt:     startsAt,
	})
	switch {
	case errors.Is(err, core.ErrEmailRequired):
		flashError(c, "Please provide the patient's email or mobile phone.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	case errors.Is(err, core.ErrStartsInPast):
		flashError(c, "Please select a date and time in the future.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("create call")
		flashError(c, "Could not create the call due to an internal server error.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	if startNow {
		access.Grant(c, room.Code)
		c.Redirect(http.StatusFound, "/room/"+string(room.Code))
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// startCall lets a doctor enter one of their own upcoming calls from
// the dashboard; this is the doctor-side credential mint.
func (h *Handlers) startCall(c *gin.Context) {
	id, ok := h.currentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := domain.RoomCode(c.Param("code"))
	_, err := h.Calls.StartCall(c.Request.Context(), id, code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrRoomFinished) {
			flashError(c, "The call you tried to access has either finished or could not be found.")
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(code)).Msg("start call")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	access.Grant(c, code)
	c.Redirect(http.StatusFound, "/room/"+string(code))
}

type historyEntry struct {
	RoomCode string    `json:"roomCode"`
	StartsAt time.Time `json:"startsAt"`
}

func (h *Handlers) callHistory(c *gin.Context) {
	id, ok := h.currentUser(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Unauthorised access or error occurred")
		return
	}

	past, err := h.Calls.History(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("call history")
		c.String(http.StatusUnauthorized, "Unauthorised access or error occurred")
		return
	}

	out := make([]historyEntry, 0, len(past))
	for _, r := range past {
		out = append(out, historyEntry{RoomCode: string(r.Code), StartsAt: r.StartsAt})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) deleteCall(c *gin.Context) {
	id, ok := h.currentUser(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	code := domain.RoomCode(c.PostForm("roomID"))
	if err := h.Calls.DeleteCall(c.Request.Context(), id, code); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(code)).Msg("delete call")
		c.Status(http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
