package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(Options{Retries: 3, Backoff: 1, HostRPS: 1000, HostBurst: 1000})
	res, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_NoRetryBudgetReturnsLastError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Options{Retries: 1, Backoff: 1, HostRPS: 1000, HostBurst: 1000})
	_, err := c.Get(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_NonRetryableStatusPassedThrough(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(Options{Retries: 3, Backoff: 1, HostRPS: 1000, HostBurst: 1000})
	res, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_SetsDefaultUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := New(Options{HostRPS: 1000, HostBurst: 1000})
	res, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	res.Body.Close()
	assert.Contains(t, ua, "Mozilla/5.0")
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"name":"acme"}`))
	}))
	defer srv.Close()

	c := New(Options{HostRPS: 1000, HostBurst: 1000})
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "acme", out.Name)
}

func TestGetJSON_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(Options{HostRPS: 1000, HostBurst: 1000})
	var out any
	assert.Error(t, c.GetJSON(context.Background(), srv.URL, &out))
}

func TestGetBody_ReportsFinalURLAfterRedirect(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landed"))
	})

	c := New(Options{HostRPS: 1000, HostBurst: 1000})
	body, finalURL, err := c.GetBody(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, "landed", string(body))
	assert.Equal(t, srv.URL+"/new", finalURL)
}

func TestHostLimiter_UnparseableURLSharesBucket(t *testing.T) {
	l := NewHostLimiter(1000, 1000)
	require.NoError(t, l.WaitURL(context.Background(), "://not-a-url"))
	require.NoError(t, l.WaitURL(context.Background(), "https://acme.example/jobs"))
}
