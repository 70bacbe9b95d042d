package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	serplenshttp "github.com/serplens/serplens/http"

	"github.com/serplens/serplens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and sends browser headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotAccept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer srv.Close()

		f := serplenshttp.NewFetcher()
		body, err := f.Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, "<html><body>hello</body></html>", body)
		assert.Contains(t, gotUA, "Mozilla/5.0")
		assert.Contains(t, gotAccept, "text/html")
	})

	t.Run("non-2xx status is an unavailable error carrying the code", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		f := serplenshttp.NewFetcher()
		_, err := f.Fetch(context.Background(), srv.URL)

		require.Error(t, err)
		assert.Equal(t, serplens.EUNAVAILABLE, serplens.ErrorCode(err))
		assert.Contains(t, serplens.ErrorMessage(err), "HTTP 403")
	})

	t.Run("slow server yields a distinct timeout error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		f := serplenshttp.NewFetcher(serplenshttp.WithTimeout(50 * time.Millisecond))
		_, err := f.Fetch(context.Background(), srv.URL)

		require.Error(t, err)
		assert.Equal(t, serplens.ETIMEOUT, serplens.ErrorCode(err))
		assert.Contains(t, serplens.ErrorMessage(err), "timeout after 50ms")
	})

	t.Run("unreachable host is unavailable, not timeout", func(t *testing.T) {
		t.Parallel()

		f := serplenshttp.NewFetcher()
		_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")

		require.Error(t, err)
		assert.Equal(t, serplens.EUNAVAILABLE, serplens.ErrorCode(err))
	})
}
