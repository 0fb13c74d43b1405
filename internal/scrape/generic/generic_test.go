package generic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/httpx"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Options{Retries: 0, HostRPS: 1000, HostBurst: 1000})
}

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Data Scientist", cleanText("  Data   Scientist  "))
	assert.Equal(t, "Data Engineer", cleanText("Data Engineer &amp;"))
	assert.Equal(t, "Data Analyst", cleanText("<span>Data Analyst</span> Location: Austin, TX"))
	assert.Equal(t, "ML Engineer", cleanText("- ML Engineer |"))
}

func TestFetch_AnchorStage(t *testing.T) {
	srv := serve(t, `<html><body>
		<a href="/careers/ds-123">Senior Data Scientist</a>
		<a href="/jobs/4567">Staff Accountant Role</a>
		<a href="/privacy">Privacy Policy Overview</a>
		<a href="/jobs/page/2/">Go to next page</a>
		<a href="/about-team">Meet the team today</a>
		<a href="/careers/ds-123">Senior Data Scientist</a>
	</body></html>`)

	a := New(testClient(), Options{})
	hits, err := a.Fetch(context.Background(), domain.Company{
		Name:       "Acme",
		CareersURL: srv.URL,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	byURL := map[string]string{}
	for _, h := range hits {
		assert.Equal(t, "generic-html", h.Source)
		byURL[h.ApplyURL] = h.Title
	}
	// term match without a job-shaped href
	assert.Equal(t, "Senior Data Scientist", byURL[srv.URL+"/careers/ds-123"])
	// job-shaped href without a term; the classifier rejects it downstream
	assert.Equal(t, "Staff Accountant Role", byURL[srv.URL+"/jobs/4567"])
}

func TestFetch_EmbeddedJSONStage(t *testing.T) {
	srv := serve(t, `<html><head>
		<script type="application/ld+json">
		{"@context":"https://schema.org","@type":"JobPosting",
		 "title":"Data Scientist","url":"https://acme.example/jobs/1"}
		</script>
		<script>window.__NEXT_DATA__ = {"title":"Data Engineer","applyUrl":"/jobs/2"}</script>
	</head><body><div id="app"></div></body></html>`)

	a := New(testClient(), Options{})
	hits, err := a.Fetch(context.Background(), domain.Company{
		Name:       "Acme",
		CareersURL: srv.URL,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)

	bySource := map[string]domain.JobPosting{}
	for _, h := range hits {
		bySource[h.Source] = h
	}
	assert.Equal(t, "Data Scientist", bySource["generic-ldjson"].Title)
	assert.Equal(t, "https://acme.example/jobs/1", bySource["generic-ldjson"].ApplyURL)
	assert.Equal(t, "Data Engineer", bySource["generic-json"].Title)
	assert.Equal(t, srv.URL+"/jobs/2", bySource["generic-json"].ApplyURL)
}

func TestFetch_MaxHitsCap(t *testing.T) {
	html := "<html><body>"
	for i := 0; i < 10; i++ {
		html += `<a href="/jobs/` + string(rune('a'+i)) + `">Data Analyst Opening</a>`
	}
	html += "</body></html>"
	srv := serve(t, html)

	a := New(testClient(), Options{MaxHits: 3})
	hits, err := a.Fetch(context.Background(), domain.Company{CareersURL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestDecodeLoose(t *testing.T) {
	v, ok := decodeLoose(`{"a":1}`)
	require.True(t, ok)
	assert.NotNil(t, v)

	// trailing inline-script garbage after the closing brace
	_, ok = decodeLoose(`{"a":1};window.x=1`)
	assert.True(t, ok)

	_, ok = decodeLoose(`not json at all`)
	assert.False(t, ok)
}

func TestHandles_AlwaysTrue(t *testing.T) {
	a := New(testClient(), Options{})
	assert.True(t, a.Handles(domain.Company{}))
	assert.True(t, a.Handles(domain.Company{CareersURL: "https://anything.example"}))
}
