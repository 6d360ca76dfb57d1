package app

import (
	"fmt"

	"github.com/mediochat/mediochat/internal/core"
	"github.com/mediochat/mediochat/internal/domain"
)

func appointmentMail(room *domain.Room, doctor *domain.User, startNow bool) core.Mail {
	when := room.StartsAt.Format("Monday, 2 January 2006 at 15:04")
	if startNow {
		return core.Mail{
			To:      room.PatientEmail,
			Subject: "APPOINTMENT STARTING NOW",
			HTML: fmt.Sprintf(
				"<h2>Your appointment is starting right now!</h2>"+
					"<p>The access code for the appointment with %s is <b>%s</b>.</p>"+
					"<p>Enter the code on the home page and click Start Call.</p>",
				doctor.FullName(), room.Code),
		}
	}
	return core.Mail{
		To:      room.PatientEmail,
		Subject: "NEW APPOINTMENT SCHEDULED by " + doctor.FullName(),
		HTML: fmt.Sprintf(
			"<h4>An appointment has been scheduled.</h4>"+
				"<ul><li>Date and time: %s</li><li>Doctor: %s</li>"+
				"<li><b>Access code: %s</b></li></ul>"+
				"<p>Enter the code on the home page and click Start Call.</p>",
			when, doctor.FullName(), room.Code),
	}
}

func cancelledMail(room *domain.Room, doctor *domain.User) core.Mail {
	return core.Mail{
		To:      room.PatientEmail,
		Subject: "APPOINTMENT CANCELLED by " + doctor.FullName(),
		HTML: fmt.Sprintf(
			"<h4>The appointment with %s scheduled for %s has been cancelled.</h4>"+
				"<p>If you think this was a mistake, please contact your doctor directly.</p>",
			doctor.FullName(), room.StartsAt.Format("Monday, 2 January 2006")),
	}
}
