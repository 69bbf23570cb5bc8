package inertiassr

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagefold/inertia/internal/inertiabase"
)

func TestHTTPSSRClient_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders a page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"head":"<title>SSR</title>","body":"<div>ok</div>"}`))
		}))
		t.Cleanup(srv.Close)

		client := NewHTTPSSRClient(srv.URL, srv.Client())

		data, err := client.Render(t.Context(), &inertiabase.Page{
			Component: "Home",
			Props:     map[string]any{"title": "hello"},
			URL:       "/",
			Version:   "1",
		})
		require.NoError(t, err)

		assert.Equal(t, "<title>SSR</title>", data.Head)
		assert.Equal(t, "<div>ok</div>", data.Body)
	})

	t.Run("propagates non-200 responses as errors", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		client := NewHTTPSSRClient(srv.URL, srv.Client())

		_, err := client.Render(t.Context(), &inertiabase.Page{Component: "Home"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected HTTP status code")
	})

	t.Run("propagates malformed payloads as errors", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		t.Cleanup(srv.Close)

		client := NewHTTPSSRClient(srv.URL, srv.Client())

		_, err := client.Render(t.Context(), &inertiabase.Page{Component: "Home"})
		require.Error(t, err)
	})
}
