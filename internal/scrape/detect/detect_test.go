package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want Platform
	}{
		{"https://acme.wd5.myworkdayjobs.com/en-US/External", Workday},
		{"https://acme.wd1.myworkdayjobs.com/careers", Workday},
		{"https://jobs.acme.com/wday/cxs/acme/External/jobs", Workday},
		{"https://boards.greenhouse.io/acme", Greenhouse},
		{"https://acme.greenhouse.io", Greenhouse},
		{"https://jobs.lever.co/acme", Lever},
		{"https://career5.successfactors.com/careers", SuccessFactors},
		{"https://jobs.acme.com/careersection/ext/joblist.ftl", SuccessFactors},
		{"https://careers-acme.icims.com/jobs/search?ss=1", ICIMS},
		{"https://acme.phenom.com/careers", Phenom},
		{"https://eeho.fa.us2.oraclecloud.com/hcmUI/CandidateExperience/en/sites/CX", Oracle},
		{"https://jobs.smartrecruiters.com/Acme", SmartRecruiters},
		{"https://careers.example.com/jobs", Unknown},
		{"", Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.want, FromURL(tc.url))
		})
	}
}

func TestFromURL_CDNPhenomExcluded(t *testing.T) {
	assert.Equal(t, Unknown, FromURL("https://cdn.phenompeople.com/assets/app.js"))
}

func TestFromBody(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Platform
	}{
		{"workday marker", `<script src="https://acme.wd5.myworkdayjobs.com/wday/app.js">`, Workday},
		{"greenhouse embed", `<iframe src="https://boards.greenhouse.io/embed/job_board?for=acme">`, Greenhouse},
		{"lever link", `<a href="https://jobs.lever.co/acme">Jobs</a>`, Lever},
		{"phenom widget", `window.phenom = {tenant: "acme"};`, Phenom},
		{"nothing", `<html><body>hello</body></html>`, Unknown},
		{"empty", "", Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromBody(tc.body))
		})
	}
}

func TestDetect_URLWinsOverBody(t *testing.T) {
	got := Detect("https://jobs.lever.co/acme", `boards.greenhouse.io`)
	assert.Equal(t, Lever, got)

	got = Detect("https://careers.example.com", `boards.greenhouse.io`)
	assert.Equal(t, Greenhouse, got)
}
