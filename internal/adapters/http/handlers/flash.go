package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// flashMaxAge is how long, in seconds, an unread notice survives.
const flashMaxAge = 60

// Flash is a one-shot notice shown on the page after a redirect.
type Flash struct {
	Kind    string
	Message string
}

// Flasher carries notices across redirects in a short-lived cookie.
type Flasher struct {
	cookie string
}

// NewFlasher creates a Flasher using the named cookie.
func NewFlasher(cookie string) *Flasher {
	return &Flasher{cookie: cookie}
}

// Set stores a notice for the next page view.
func (f *Flasher) Set(c *gin.Context, kind, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(f.cookie, kind+":"+message, flashMaxAge, "/", "", false, true)
}

// Pop returns the pending notice, if any, and clears it.
func (f *Flasher) Pop(c *gin.Context) *Flash {
	raw, err := c.Cookie(f.cookie)
	if err != nil || raw == "" {
		return nil
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(f.cookie, "", -1, "/", "", false, true)

	kind, message, ok := strings.Cut(raw, ":")
	if !ok || message == "" || (kind != FlashSuccess && kind != FlashError) {
		return nil
	}

	return &Flash{Kind: kind, Message: message}
}
