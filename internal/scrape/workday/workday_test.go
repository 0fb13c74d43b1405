package workday

import (
	"context"
	"encoding/json"
	"fmt"
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

func TestParseBoard(t *testing.T) {
	cases := []struct {
		name     string
		url      string
		endpoint string
		site     string
	}{
		{
			"locale then site",
			"https://acme.wd5.myworkdayjobs.com/en-US/External",
			"https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs",
			"External",
		},
		{
			"bare site",
			"https://acme.wd5.myworkdayjobs.com/Careers",
			"https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/Careers/jobs",
			"Careers",
		},
		{
			"details path",
			"https://acme.wd5.myworkdayjobs.com/en-US/External/details/Data-Scientist_R123",
			"https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs",
			"External",
		},
		{
			"job path",
			"https://acme.wd5.myworkdayjobs.com/External/job/NYC/Data-Engineer_R9",
			"https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs",
			"External",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := parseBoard(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.endpoint, b.endpoint)
			assert.Equal(t, tc.site, b.site)
		})
	}
}

func TestParseBoard_Errors(t *testing.T) {
	_, err := parseBoard("")
	assert.Error(t, err)

	_, err = parseBoard("https://acme.wd5.myworkdayjobs.com/")
	assert.Error(t, err)
}

func TestApplyURL(t *testing.T) {
	b := board{host: "acme.wd5.myworkdayjobs.com", site: "External"}

	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/External/job/NYC/DS_R1",
		b.applyURL("job/NYC/DS_R1"))
	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/en-US/External/details/DS_R1",
		b.applyURL("/en-US/External/details/DS_R1"))
	assert.Equal(t,
		"https://acme.wd5.myworkdayjobs.com/External/details/DS_R1",
		b.applyURL("/External/details/DS_R1"))
	assert.Equal(t, "", b.applyURL("  "))
}

func TestIsUS(t *testing.T) {
	cases := []struct {
		loc  string
		want bool
	}{
		{"New York, NY", true},
		{"Remote - US", true},
		{"San Francisco, CA (Hybrid)", true},
		{"United States of America", true},
		{"Toronto, Canada", false},
		{"London, United Kingdom", false},
		{"Bengaluru, India", false},
		{"", true},            // unknown passes through
		{"Headquarters", true}, // unknown passes through
	}
	for _, tc := range cases {
		t.Run(tc.loc, func(t *testing.T) {
			assert.Equal(t, tc.want, isUS(tc.loc))
		})
	}
}

func TestFetch_PaginatesAndFilters(t *testing.T) {
	// Two pages for "data": a full page of 20, then a short page.
	page := func(offset, total, n int) searchResponse {
		var sr searchResponse
		sr.Total = total
		for i := 0; i < n; i++ {
			sr.JobPostings = append(sr.JobPostings, posting{
				Title:         fmt.Sprintf("Data Scientist %d", offset+i),
				ExternalPath:  fmt.Sprintf("/job/NYC/DS_%d", offset+i),
				LocationsText: "New York, NY",
			})
		}
		return sr
	}

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wday/cxs/127/External/jobs", r.URL.Path)
		requests++

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var sr searchResponse
		switch req.Offset {
		case 0:
			sr = page(0, 23, 20)
		case 20:
			sr = page(20, 23, 3)
			// one foreign row on the last page
			sr.JobPostings = append(sr.JobPostings, posting{
				Title:         "Data Scientist INTL",
				ExternalPath:  "/job/Toronto/DS_INTL",
				LocationsText: "Toronto, Canada",
			})
		}
		json.NewEncoder(w).Encode(sr)
	}))
	defer srv.Close()

	a := New(testClient(), Options{Terms: []string{"data"}, USOnly: true})
	hits, err := a.Fetch(context.Background(), domain.Company{
		Name:       "Acme",
		CareersURL: srv.URL + "/External",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, hits, 23)
	for _, h := range hits {
		assert.Equal(t, "workday-api", h.Source)
		assert.NotContains(t, h.ApplyURL, "Toronto")
	}
}

func TestFetch_EmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	a := New(testClient(), Options{})
	hits, err := a.Fetch(context.Background(), domain.Company{
		Name:       "Acme",
		CareersURL: srv.URL + "/External",
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestHandles(t *testing.T) {
	a := New(testClient(), Options{})

	assert.True(t, a.Handles(domain.Company{CareersURL: "https://acme.wd5.myworkdayjobs.com/External"}))
	assert.True(t, a.Handles(domain.Company{CareersURL: "https://jobs.acme.com/wday/cxs/acme/External/jobs"}))
	assert.False(t, a.Handles(domain.Company{CareersURL: "https://boards.greenhouse.io/acme"}))
	assert.False(t, a.Handles(domain.Company{}))
}
