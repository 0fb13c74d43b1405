package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datajobs-engine/internal/domain"
	"datajobs-engine/internal/scrape/detect"
	"datajobs-engine/internal/scrape/httpx"
	"datajobs-engine/internal/store"
)

func refreshClient() *httpx.Client {
	return httpx.New(httpx.Options{Retries: 0, HostRPS: 1000, HostBurst: 1000})
}

func TestProbeCompany_TrustedCareersURL(t *testing.T) {
	res := probeCompany(context.Background(), refreshClient(), domain.Company{
		Name:       "Acme",
		ATS:        "AUTO",
		CareersURL: "https://acme.wd5.myworkdayjobs.com/External",
	})
	assert.Equal(t, "https://acme.wd5.myworkdayjobs.com/External", res.careersURL)
	assert.Equal(t, detect.Workday, res.ats)
}

func TestRefreshCompanies(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/careers">Careers</a></body></html>`))
	})
	mux.HandleFunc("/careers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Jobs at Acme</title></head>
			<body><a href="https://jobs.lever.co/acme">See open roles</a></body></html>`))
	})

	db := testStore(t)
	ctx := context.Background()

	_, err := store.UpsertCompany(ctx, db.Pool, domain.Company{
		Name:        "Acme",
		HomepageURL: srv.URL,
		ATS:         "AUTO",
		Active:      true,
	})
	require.NoError(t, err)

	// Pinned platform with a careers URL: not a refresh target.
	_, err = store.UpsertCompany(ctx, db.Pool, domain.Company{
		Name:       "Pinned",
		CareersURL: "https://boards.greenhouse.io/pinned",
		ATS:        "GREENHOUSE",
		Active:     true,
	})
	require.NoError(t, err)

	rep, err := RefreshCompanies(ctx, db, refreshClient(), RefreshOptions{Parallel: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Probed)
	assert.Equal(t, 1, rep.Updated)

	companies, err := store.ListActiveCompanies(ctx, db.Pool)
	require.NoError(t, err)
	for _, co := range companies {
		if co.Name != "Acme" {
			continue
		}
		assert.Equal(t, srv.URL+"/careers", co.CareersURL)
		// Careers page body links to a Lever board; body detection catches it.
		assert.Equal(t, "LEVER", co.ATS)
	}
}

func TestRefreshCompanies_ResetAutoIncludesPinned(t *testing.T) {
	db := testStore(t)
	ctx := context.Background()

	_, err := store.UpsertCompany(ctx, db.Pool, domain.Company{
		Name:       "Pinned",
		CareersURL: "https://boards.greenhouse.io/pinned",
		ATS:        "GREENHOUSE",
		Active:     true,
	})
	require.NoError(t, err)

	rep, err := RefreshCompanies(ctx, db, refreshClient(), RefreshOptions{Parallel: 1, ResetAuto: true})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Probed)
	// The careers URL is already the best candidate, so nothing changes.
	assert.Equal(t, 0, rep.Updated)
}
