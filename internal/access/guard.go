// Package access implements the room-entry credential: a deterministic
// digest of the room code carried in a cookie. Possession of the digest
// proves the client resolved the code through a sanctioned entry path
// (patient form or doctor dashboard) instead of typing a room URL
// directly. It carries no identity; ownership checks live elsewhere.
package access

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediochat/mediochat/internal/domain"
)

const (
	// CookieName holds the room credential digest.
	CookieName = "room"
	// PatientCookie holds the patient's display name for the call; its
	// presence is what distinguishes a patient from a doctor in a room.
	PatientCookie = "patientName"

	// TTL bounds the credential lifetime. Expiry is enforced purely by
	// the cookie MaxAge; there is no server-side session table.
	TTL = time.Hour
)

// Mint derives the credential for a room code. Deterministic: the same
// code always yields the same digest, so the cookie can be checked by
// recomputation without any stored state.
func Mint(code domain.RoomCode) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Authorize reports whether cred is exactly the credential for code.
// Presence check only: true means "this client was issued entry to this
// room code", nothing about who they are.
func Authorize(cred string, code domain.RoomCode) bool {
	if cred == "" {
		return false
	}
	want := Mint(code)
	return subtle.ConstantTimeCompare([]byte(cred), []byte(want)) == 1
}

// Grant sets the room credential cookie on the response.
func Grant(c *gin.Context, code domain.RoomCode) {
	c.SetCookie(CookieName, Mint(code), int(TTL.Seconds()), "/", "", false, true)
}

// GrantPatient additionally records the patient's display name so the
// room view can tell the two participant kinds apart.
func GrantPatient(c *gin.Context, code domain.RoomCode, displayName string) {
	Grant(c, code)
	c.SetCookie(PatientCookie, displayName, int(TTL.Seconds()), "/", "", false, true)
}

// Revoke clears the room credential, forcing re-authorization through
// an entry path before the room can be viewed again.
func Revoke(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// Presented returns the credential the request carries, if any.
func Presented(c *gin.Context) string {
	cred, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cred
}
