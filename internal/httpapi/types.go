package httpapi

type ScrapeStatus struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastSaved   int    `json:"last_saved"`
	LastCreated int    `json:"last_created"`
	Running     bool   `json:"running"`
}
