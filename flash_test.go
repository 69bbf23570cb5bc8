package inertia

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashRequest(t *testing.T, flash Flash) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, SetFlash(rec, flash))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}

	return r
}

func TestFlash_RoundTrip(t *testing.T) {
	t.Parallel()

	flash := Flash{"notice": "Saved!", "error": "Nope"}

	got := FlashFromRequest(flashRequest(t, flash))
	assert.Equal(t, flash, got)
}

func TestFlashFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("nil without a cookie", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, FlashFromRequest(r))
	})

	t.Run("nil for a malformed cookie", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "not!base64!!"})

		assert.Nil(t, FlashFromRequest(r))
	})

	t.Run("context value wins over the cookie", func(t *testing.T) {
		t.Parallel()

		r := flashRequest(t, Flash{"from": "cookie"})

		w := httptest.NewRecorder()
		r = popFlash(w, r)

		assert.Equal(t, Flash{"from": "cookie"}, FlashFromRequest(r))
	})
}

func TestPopFlash(t *testing.T) {
	t.Parallel()

	t.Run("moves the cookie into the context and clears it", func(t *testing.T) {
		t.Parallel()

		r := flashRequest(t, Flash{"notice": "Saved!"})
		w := httptest.NewRecorder()

		r = popFlash(w, r)

		assert.Equal(t, Flash{"notice": "Saved!"}, FlashFromRequest(r))

		var cleared bool

		for _, c := range w.Result().Cookies() {
			if c.Name == FlashCookieName && c.Value == "" {
				cleared = true
			}
		}

		assert.True(t, cleared, "pop must clear the cookie")
	})

	t.Run("no cookie is a no-op", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		r = popFlash(w, r)

		assert.Nil(t, FlashFromRequest(r))
		assert.Empty(t, w.Result().Cookies(), "nothing to clear")
	})

	t.Run("malformed cookie is dropped", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "garbage"})

		w := httptest.NewRecorder()
		r = popFlash(w, r)

		assert.Nil(t, FlashFromRequest(r))
	})
}
