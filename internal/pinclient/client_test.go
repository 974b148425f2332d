package pinclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		host     string
		want     string
	}{
		{"explicit wins", "https://pins.example.com/", "foo-5173.app.github.dev", "https://pins.example.com"},
		{"codespaces rewrite", "", "fuzzy-space-abc123-5173.app.github.dev", "https://fuzzy-space-abc123-3001.app.github.dev"},
		{"codespaces already backend", "", "fuzzy-3001.app.github.dev", "https://fuzzy-3001.app.github.dev"},
		{"plain host", "", "localhost:5173", "http://localhost:3001"},
		{"nothing", "  ", "", "http://localhost:3001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBaseURL(tt.explicit, tt.host))
		})
	}
}

func TestCodespaceHost(t *testing.T) {
	assert.Equal(t, "", CodespaceHost(""))
	assert.Equal(t, "https://my-space-3001.app.github.dev", ResolveBaseURL("", CodespaceHost("my-space")))
}

func TestPinImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pin-image", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(b))
		assert.Equal(t, "ticket.png", hdr.Filename)
		_, _ = io.WriteString(w, `{"metadataUrl":"ipfs://bafkmeta"}`)
	}))
	defer srv.Close()

	url, err := NewClient(srv.URL+"/", time.Second).PinImage(context.Background(), "ticket.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "ipfs://bafkmeta", url)
}

func TestPinImageFailures(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := NewClient("http://127.0.0.1:1", time.Second).PinImage(context.Background(), "a.png", nil)
		assert.Equal(t, failure.KindMissingContent, failure.KindOf(err))
	})

	t.Run("backend error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"Invalid API key"}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).PinImage(context.Background(), "a.png", []byte("a"))
		require.Error(t, err)
		assert.Equal(t, failure.KindPinService, failure.KindOf(err))
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "Invalid API key")
	})

	t.Run("missing url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).PinImage(context.Background(), "a.png", []byte("a"))
		assert.Equal(t, failure.KindPinService, failure.KindOf(err))
	})
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = io.WriteString(w, `{"ok":true,"ts":1700000000000}`)
	}))
	defer srv.Close()

	ts, err := NewClient(srv.URL, time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts.UnixMilli())
}
