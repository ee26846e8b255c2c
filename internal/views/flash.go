package views

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSessionName = "notepad-flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string // "success" or "error"
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Flasher keeps flash messages in a signed cookie.
type Flasher struct {
	store sessions.Store
}

func NewFlasher(key []byte, secure bool) *Flasher {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flasher{store: store}
}

// Add queues a message. It must be called before the response is written.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, category, msg string) error {
	sess, err := f.store.Get(r, flashSessionName)
	// On a decode error sess is a fresh session; the message is still queued.
	sess.AddFlash(Flash{Category: category, Message: msg})
	if saveErr := sess.Save(r, w); saveErr != nil {
		return saveErr
	}
	if err != nil {
		return fmt.Errorf("discarded flash cookie: %w", err)
	}
	return nil
}

// Pop returns and clears the queued messages.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess, err := f.store.Get(r, flashSessionName)
	if err != nil {
		// Undecodable cookie: start over with a fresh session.
		if saveErr := sess.Save(r, w); saveErr != nil {
			return nil, saveErr
		}
		return nil, fmt.Errorf("discarded flash cookie: %w", err)
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if fl, ok := v.(Flash); ok {
			out = append(out, fl)
		}
	}
	return out, sess.Save(r, w)
}
