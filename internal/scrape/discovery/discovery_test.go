package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datajobs-engine/internal/scrape/detect"
	"datajobs-engine/internal/scrape/httpx"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Options{Retries: 0, HostRPS: 1000, HostBurst: 1000})
}

func TestNormalizeByATS(t *testing.T) {
	t.Run("icims host prefix stripped", func(t *testing.T) {
		got := normalizeByATS("https://careers-acme.icims.com/jobs/intro?hashed=1", detect.ICIMS)
		assert.Equal(t, "https://acme.icims.com/jobs/search?ss=1", got)
	})

	t.Run("successfactors career path kept", func(t *testing.T) {
		raw := "https://career5.successfactors.com/careersection/ext/joblist.ftl"
		assert.Equal(t, raw, normalizeByATS(raw, detect.SuccessFactors))
	})

	t.Run("successfactors other path rewritten", func(t *testing.T) {
		got := normalizeByATS("https://acme.successfactors.com/portal/home", detect.SuccessFactors)
		assert.Equal(t, "https://acme.successfactors.com/career", got)
	})

	t.Run("other platforms untouched", func(t *testing.T) {
		raw := "https://boards.greenhouse.io/acme"
		assert.Equal(t, raw, normalizeByATS(raw, detect.Greenhouse))
		assert.Equal(t, raw, normalizeByATS(raw, detect.Unknown))
	})
}

func TestScore(t *testing.T) {
	career := score("https://acme.example/careers", detect.Unknown, true, "Careers at Acme")
	plain := score("https://acme.example/about", detect.Unknown, true, "About")
	assert.Greater(t, career, plain)

	withATS := score("https://boards.greenhouse.io/acme", detect.Greenhouse, true, "")
	assert.Greater(t, withATS, plain)

	asset := score("https://cdn.phenompeople.com/widget.js", detect.Unknown, false, "")
	assert.Less(t, asset, 0)
}

func TestFromHomepage(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="/careers">Careers</a>
			<a href="/about">About</a>
			<a href="/styles.css">Stylesheet careers</a>
		</body></html>`))
	})
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Careers at Acme</title></head><body>jobs</body></html>`))
	})

	cands := FromHomepage(context.Background(), testClient(), srv.URL, 3)
	require.NotEmpty(t, cands)

	best := cands[0]
	assert.Equal(t, srv.URL+"/careers", best.NormalizedURL)
	assert.Equal(t, http.StatusOK, best.HTTPStatus)
	assert.Equal(t, "Careers at Acme", best.PageTitle)
	assert.Greater(t, best.Score, 0)
}

func TestFromHomepage_NoLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/about">About</a></body></html>`))
	}))
	defer srv.Close()

	cands := FromHomepage(context.Background(), testClient(), srv.URL, 3)
	assert.Empty(t, cands)
}

func TestFromHomepage_EmptyURL(t *testing.T) {
	assert.Nil(t, FromHomepage(context.Background(), testClient(), "", 3))
}
