package inertia

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.inout.gg/foundations/http/httpcookie"
)

type flashCtx struct{}

//nolint:gochecknoglobals
var kFlashCtx = flashCtx{}

const (
	// FlashCookieName is the cookie carrying one-shot flash data between
	// requests.
	FlashCookieName = "_inertia_flash"

	flashCookiePath = "/"
)

//nolint:gochecknoglobals
var flashBufPool = sync.Pool{New: func() any { return bytes.NewBuffer(nil) }}

//nolint:gochecknoinits
func init() {
	gob.Register(Flash{})
}

// Flash is one-shot data delivered to the client as the "flash" prop of the
// next rendered page.
//
// The middleware pops pending flash data off its cookie into the request
// context; the renderer injects it unless the page supplies its own "flash"
// prop. On a version-mismatch 409 the data is re-saved so it survives the
// forced reload.
type Flash map[string]string

// SetFlash stores flash data for delivery with the next rendered page.
func SetFlash(w http.ResponseWriter, flash Flash) error {
	buf := flashBufPool.Get().(*bytes.Buffer) //nolint:forcetypeassert

	defer func() {
		buf.Reset()
		flashBufPool.Put(buf)
	}()

	if err := gob.NewEncoder(buf).Encode(flash); err != nil {
		return fmt.Errorf("inertia: failed to encode flash data: %w", err)
	}

	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(buf.Bytes()),
		Path:     flashCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})

	return nil
}

// FlashFromRequest returns the flash data pending for this request: the
// value popped by the middleware if present, otherwise the raw cookie
// contents.
func FlashFromRequest(r *http.Request) Flash {
	if fl, ok := r.Context().Value(kFlashCtx).(Flash); ok {
		return fl
	}

	fl, err := flashFromCookie(r)
	if err != nil {
		d("failed to decode flash cookie: %v", err)
		return nil
	}

	return fl
}

func flashFromCookie(r *http.Request) (Flash, error) {
	val := httpcookie.Get(r, FlashCookieName)
	if val == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("inertia: failed to decode flash cookie: %w", err)
	}

	var fl Flash
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&fl); err != nil {
		return nil, fmt.Errorf("inertia: failed to decode flash data: %w", err)
	}

	return fl, nil
}

// popFlash moves pending flash data from the cookie into the request
// context and clears the cookie, making the data one-shot.
func popFlash(w http.ResponseWriter, r *http.Request) *http.Request {
	fl, err := flashFromCookie(r)
	if err != nil {
		d("dropping malformed flash cookie: %v", err)
	}

	if httpcookie.Get(r, FlashCookieName) != "" {
		httpcookie.Delete(w, r, FlashCookieName)
	}

	if len(fl) == 0 {
		return r
	}

	return r.WithContext(context.WithValue(r.Context(), kFlashCtx, fl))
}
