package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_GetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if got := r.Header.Get("User-Agent"); got != "celltower-test" {
				t.Errorf("User-Agent = %q", got)
			}
			_, _ = w.Write([]byte("payload"))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), map[string]string{"User-Agent": "celltower-test"})
	ctx := context.Background()

	body, err := c.GetBytes(ctx, srv.URL+"/ok")
	if err != nil || string(body) != "payload" {
		t.Fatalf("GetBytes(/ok) = %q, %v", body, err)
	}

	tests := []struct {
		path      string
		want      error
		retryable bool
	}{
		{"/missing", ErrNotFound, false},
		{"/broken", ErrNetwork, true},
		{"/forbidden", ErrNetwork, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := c.GetBytes(ctx, srv.URL+tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil, nil).GetBytes(context.Background(), url)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want retryable network error", err)
	}
}
