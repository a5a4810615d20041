package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eucKRPage is "<html><body>303회</body></html>" with the round suffix encoded as EUC-KR
var eucKRPage = []byte("<html><head><meta charset=\"euc-kr\"></head><body>303\xc8\xb8</body></html>")

func newTestFetcher(url string, opts ...FetcherOption) *HTTPFetcher {
	opts = append([]FetcherOption{WithRetryInterval(time.Millisecond), WithTimeout(2 * time.Second)}, opts...)
	return NewHTTPFetcher(url, opts...)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>303회 2026.02.19 1등 4조 6 3 9 5 6 6 1</p>"))
	}))
	defer srv.Close()

	doc, err := newTestFetcher(srv.URL, WithUserAgent("pension720-test")).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, srv.URL, doc.URL)
	assert.Contains(t, doc.Body, "303회")
	assert.False(t, doc.FetchedAt.IsZero())
	got := <-headers
	assert.Equal(t, "pension720-test", got.Get("User-Agent"))
	assert.Contains(t, got.Get("Accept-Language"), "ko-KR")
}

func TestHTTPFetcher_DecodesLegacyEncoding(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(eucKRPage)
	}))
	defer srv.Close()

	doc, err := newTestFetcher(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "303회")
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	doc, err := newTestFetcher(srv.URL, WithMaxRetries(3)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "ok")
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		retries   int
		wantErr   error
		wantCalls int32
	}{
		{
			name:      "not found is not retried",
			status:    http.StatusNotFound,
			retries:   3,
			wantErr:   ErrFetchStatus,
			wantCalls: 1,
		},
		{
			name:      "server error exhausts retries",
			status:    http.StatusBadGateway,
			retries:   2,
			wantErr:   ErrFetchStatus,
			wantCalls: 3,
		},
		{
			name:      "throttled is retried",
			status:    http.StatusTooManyRequests,
			retries:   1,
			wantErr:   ErrFetchStatus,
			wantCalls: 2,
		},
		{
			name:      "blocking page",
			status:    http.StatusOK,
			body:      "<html><body>현재 접속자가 많아 대기 중입니다</body></html>",
			retries:   1,
			wantErr:   ErrBlockedPage,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			doc, err := newTestFetcher(srv.URL, WithMaxRetries(tt.retries)).Fetch(context.Background())

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, doc)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestHTTPFetcher_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("never read"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(srv.URL).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
