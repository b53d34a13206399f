package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
)

const (
	flashCookieName = "taskboard_flash"
	// maxFlashes bounds the queue so repeated failures cannot grow the cookie
	// past browser limits.
	maxFlashes = 10
)

// Flash categories.
const (
	FlashError = "error"
	FlashInfo  = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// FlashStore queues flash messages in a signed cookie. A message is added by
// one request and consumed by the next page render.
type FlashStore struct {
	codec *securecookie.SecureCookie
}

// NewFlashStore returns a FlashStore signing cookies with key. An empty key
// is replaced by a random one.
func NewFlashStore(key []byte) *FlashStore {
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	codec := securecookie.New(key, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(3600)

	return &FlashStore{codec: codec}
}

// Add appends a message to the queue carried by r and writes the updated
// cookie to w.
func (s *FlashStore) Add(w http.ResponseWriter, r *http.Request, category, message string) error {
	flashes := s.read(r)
	flashes = append(flashes, Flash{Category: category, Message: message})
	if len(flashes) > maxFlashes {
		flashes = flashes[len(flashes)-maxFlashes:]
	}

	encoded, err := s.codec.Encode(flashCookieName, flashes)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the queued messages and clears the cookie. Missing, expired or
// tampered cookies yield no messages.
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	if _, err := r.Cookie(flashCookieName); errors.Is(err, http.ErrNoCookie) {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return s.read(r)
}

func (s *FlashStore) read(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := s.codec.Decode(flashCookieName, c.Value, &flashes); err != nil {
		return nil
	}
	return flashes
}
