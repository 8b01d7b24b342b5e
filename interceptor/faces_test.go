package interceptor_test

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/tarmac-project/fetchmock"
	"github.com/tarmac-project/fetchmock/fetch"
	"github.com/tarmac-project/fetchmock/interceptor"
	"github.com/tarmac-project/fetchmock/pattern"
	"github.com/tarmac-project/fetchmock/registry"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	hc := &http.Client{}
	m := newInterceptor(t, interceptor.Config{HTTPClient: hc})
	mustRegister(t, m, pattern.Glob("https://api.example.com/*"), registry.Options{
		Data:   map[string]string{"hello": "world"},
		Status: http.StatusCreated,
		Header: http.Header{"X-Mock": {"yes"}},
	})

	if hc.Transport != http.RoundTripper(m) {
		t.Fatalf("expected transport to be replaced on install")
	}

	t.Run("Matched", func(t *testing.T) {
		resp, err := hc.Get("https://api.example.com/greeting")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		if resp.Header.Get("X-Mock") != "yes" || resp.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected headers %v", resp.Header)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("ReadAll returned error: %v", err)
		}
		if string(b) != `{"hello":"world"}` {
			t.Fatalf("unexpected body %s", b)
		}
	})

	t.Run("Unmatched", func(t *testing.T) {
		_, err := hc.Get("https://other.example.com/greeting")

		var uerr *url.Error
		if !errors.As(err, &uerr) {
			t.Fatalf("expected *url.Error, got %T %v", err, err)
		}
		var nf *interceptor.NotFoundError
		if !errors.As(err, &nf) || nf.URL != "https://other.example.com/greeting" {
			t.Fatalf("expected wrapped *NotFoundError, got %v", err)
		}
	})

	t.Run("Clear restores transport", func(t *testing.T) {
		m.Clear()
		if hc.Transport != nil {
			t.Fatalf("expected original nil transport to be restored, got %T", hc.Transport)
		}
	})
}

func TestHostCall(t *testing.T) {
	t.Parallel()

	m := newInterceptor(t, interceptor.Config{})
	mustRegister(t, m, pattern.Expr(`/users/\d+$`), registry.Options{
		Data:   map[string]int{"id": 7},
		Header: http.Header{"X-Mock": {"host"}},
	})

	hf, err := fetch.NewHostFetcher(fetch.HostConfig{HostCall: m.HostCall})
	if err != nil {
		t.Fatalf("NewHostFetcher returned error: %v", err)
	}
	client := fetch.NewClient(hf)

	t.Run("Matched", func(t *testing.T) {
		resp, err := client.Get("https://x.test/users/7")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Mock") != "host" {
			t.Fatalf("unexpected response %d %v", resp.StatusCode, resp.Header)
		}

		var got map[string]int
		if err := resp.JSON(&got); err != nil || got["id"] != 7 {
			t.Fatalf("unexpected body %v, %v", got, err)
		}
	})

	t.Run("Unmatched", func(t *testing.T) {
		_, err := client.Get("https://x.test/users/me")
		if !errors.Is(err, fetchmock.ErrHostCall) {
			t.Fatalf("expected ErrHostCall, got %v", err)
		}
		if !errors.Is(err, interceptor.ErrNotFound) {
			t.Fatalf("expected ErrNotFound to be preserved, got %v", err)
		}
	})
}

func TestHostCallErrors(t *testing.T) {
	t.Parallel()

	m := newInterceptor(t, interceptor.Config{})

	tt := []struct {
		name       string
		capability string
		function   string
		payload    []byte
		wantErr    error
	}{
		{
			name:       "unexpected capability",
			capability: "kvstore",
			function:   fetch.HostFunction,
			wantErr:    interceptor.ErrUnexpectedCapability,
		},
		{
			name:       "unexpected function",
			capability: fetch.HostCapability,
			function:   "get",
			wantErr:    interceptor.ErrUnexpectedFunction,
		},
		{
			name:       "garbage payload",
			capability: fetch.HostCapability,
			function:   fetch.HostFunction,
			payload:    []byte{0xff, 0xff, 0xff},
			wantErr:    interceptor.ErrUnmarshalRequest,
		},
		{
			name:       "missing url",
			capability: fetch.HostCapability,
			function:   fetch.HostFunction,
			payload:    []byte{},
			wantErr:    fetch.ErrInvalidURL,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := m.HostCall("tarmac", tc.capability, tc.function, tc.payload)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
