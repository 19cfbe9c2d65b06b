package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperr "moneyhunter/dealworker/pkg/errors"
)

func TestFetchWithBrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>핫딜</body></html>"))
	}))
	defer server.Close()

	body, err := FetchWithBrowserHeaders(context.Background(), "test", server.URL)
	assert.NoError(t, err)

	content, err := io.ReadAll(body)
	assert.NoError(t, err)
	assert.Contains(t, string(content), "핫딜")
}

func TestFetchWithBrowserHeaders_EUCKR(t *testing.T) {
	// "안녕" encoded as EUC-KR
	eucKR := []byte{0xbe, 0xc8, 0xb3, 0xe7}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		w.Write(eucKR)
	}))
	defer server.Close()

	body, err := FetchWithBrowserHeaders(context.Background(), "ppomppu", server.URL)
	assert.NoError(t, err)

	content, err := io.ReadAll(body)
	assert.NoError(t, err)
	assert.Equal(t, "안녕", string(content))
}

func TestFetchWithBrowserHeaders_Upstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := FetchWithBrowserHeaders(context.Background(), "test", server.URL)
	assert.Error(t, err)
	assert.Equal(t, apperr.ErrorTypeUpstream, apperr.TypeOf(err))
}

func TestFetchWithBrowserHeaders_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := FetchWithBrowserHeaders(context.Background(), "test", server.URL)
	assert.Error(t, err)
	assert.True(t, apperr.IsRateLimit(err))
}

func TestFetchWithBrowserHeaders_Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := FetchWithBrowserHeaders(context.Background(), "test", server.URL)
	assert.Error(t, err)
	assert.Equal(t, apperr.ErrorTypeTransport, apperr.TypeOf(err))
}
