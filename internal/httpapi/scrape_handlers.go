package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"datajobs-engine/internal/events"
	"datajobs-engine/internal/scheduler"
	"datajobs-engine/internal/scrape"
)

type ScrapeHandler struct {
	ScrapeStatus *atomic.Value // httpapi.ScrapeStatus
	Hub          *events.Hub
	RunScrape    func(ctx context.Context, opts scrape.RunOptions) (scrape.RunReport, error)
	Sched        *scheduler.Runner
}

type statusResponse struct {
	ScrapeStatus
	Tasks map[string]scheduler.TaskState `json:"tasks,omitempty"`
}

// Status reports the manual-run state plus scheduler task state, so one
// call answers both "is a scrape running" and "when did the cron last fire".
func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{ScrapeStatus: h.ScrapeStatus.Load().(ScrapeStatus)}
	if h.Sched != nil {
		resp.Tasks = h.Sched.States()
	}
	writeJSON(w, resp)
}

// Run triggers one scrape in the background. Re-entry while a run is in
// flight is refused rather than queued.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.ScrapeStatus.Load().(ScrapeStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	opts := scrape.RunOptions{
		Company: r.URL.Query().Get("company"),
		Limit:   limit,
	}

	h.ScrapeStatus.Store(ScrapeStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastOkAt:  st.LastOkAt,
	})

	go func() {
		h.Hub.Publish(events.Make(events.TypeScrapeStarted, nil))
		rep, err := h.RunScrape(context.Background(), opts)

		now := time.Now().Format(time.RFC3339)
		next := h.ScrapeStatus.Load().(ScrapeStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastSaved = rep.Saved
		next.LastCreated = rep.Created
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.ScrapeStatus.Store(next)
		h.Hub.Publish(events.Make(events.TypeScrapeDone, rep))
	}()

	writeJSON(w, map[string]any{"ok": true})
}
