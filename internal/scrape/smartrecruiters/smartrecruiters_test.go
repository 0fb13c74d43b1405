package smartrecruiters

import (
	"context"
	"encoding/json"
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

func TestCompanySlug(t *testing.T) {
	assert.Equal(t, "Acme", companySlug("https://careers.smartrecruiters.com/Acme"))
	assert.Equal(t, "Acme", companySlug("https://jobs.smartrecruiters.com/Acme/123-data-scientist"))
	assert.Equal(t, "", companySlug("https://careers.acme.com/jobs"))
	assert.Equal(t, "", companySlug("https://jobs.smartrecruiters.com/"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/companies/Acme/postings", r.URL.Path)
		require.Equal(t, "data", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(postingsPage{Content: []posting{
			{Name: "Data Scientist", ReferralURL: "https://jobs.smartrecruiters.com/Acme/1"},
			{Name: "Data Analyst", PostingURL: "https://jobs.smartrecruiters.com/Acme/2"},
			{Name: "Sales Lead", ReferralURL: "https://jobs.smartrecruiters.com/Acme/3"},
		}})
	}))
	defer srv.Close()

	a := New(testClient())
	a.APIBase = srv.URL

	hits, err := a.Fetch(context.Background(), domain.Company{
		Name:       "Acme",
		CareersURL: "https://careers.smartrecruiters.com/Acme",
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://jobs.smartrecruiters.com/Acme/1", hits[0].ApplyURL)
	assert.Equal(t, "smartrecruiters", hits[0].Source)
	assert.Equal(t, "https://jobs.smartrecruiters.com/Acme/2", hits[1].ApplyURL)
}

func TestFetch_DataListFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(postingsPage{Data: []posting{
			{Name: "Machine Learning Engineer", ApplyURL: "https://jobs.smartrecruiters.com/Acme/9"},
		}})
	}))
	defer srv.Close()

	a := New(testClient())
	a.APIBase = srv.URL

	hits, err := a.Fetch(context.Background(), domain.Company{
		CareersURL: "https://jobs.smartrecruiters.com/Acme",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Machine Learning Engineer", hits[0].Title)
}

func TestHandles(t *testing.T) {
	a := New(testClient())
	assert.True(t, a.Handles(domain.Company{ATS: "smartrecruiters"}))
	assert.True(t, a.Handles(domain.Company{CareersURL: "https://jobs.smartrecruiters.com/Acme"}))
	assert.False(t, a.Handles(domain.Company{CareersURL: "https://jobs.lever.co/acme"}))
}
