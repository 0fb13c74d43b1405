package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"datajobs-engine/internal/domain"
)

type JobHit struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"companyId"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	ApplyURL    string `json:"applyUrl"`
	Source      string `json:"source"`
	RawSnippet  string `json:"rawSnippet"`
	Active      bool   `json:"active"`
	Category    string `json:"category"`
	FirstSeenAt string `json:"firstSeenAt"`
	FoundAt     string `json:"foundAt"`
}

// UpsertJobHit records one observation of a posting. The (company_id,
// apply_url) pair is the identity: a new pair inserts with first_seen_at
// stamped once, a known pair only refreshes the mutable fields. created
// reports which path was taken.
func UpsertJobHit(ctx context.Context, db *sql.DB, companyID int64, p domain.JobPosting) (created bool, err error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Data Scientist"
	}
	source := p.Source
	if source == "" {
		source = "auto"
	}
	foundAt := p.FoundAt
	if foundAt.IsZero() {
		foundAt = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
SELECT id FROM job_hits WHERE company_id = ? AND apply_url = ?;`,
		companyID, p.ApplyURL).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `
INSERT INTO job_hits (company_id, title, apply_url, source, raw_snippet, is_active, category, first_seen_at, found_at)
VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?);`,
			companyID, title, p.ApplyURL, source, p.Snippet, string(p.Category),
			fmtTime(foundAt), fmtTime(foundAt))
		if err != nil {
			return false, fmt.Errorf("insert job hit: %w", err)
		}
		created = true
	case err != nil:
		return false, err
	default:
		// first_seen_at is deliberately absent from the update set.
		_, err = tx.ExecContext(ctx, `
UPDATE job_hits
SET title = ?, source = ?, raw_snippet = ?, is_active = 1,
    category = CASE WHEN ? != '' THEN ? ELSE category END,
    found_at = ?
WHERE id = ?;`,
			title, source, p.Snippet, string(p.Category), string(p.Category),
			fmtTime(foundAt), id)
		if err != nil {
			return false, fmt.Errorf("update job hit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return created, nil
}

type ListHitsOpts struct {
	Category string // "Data Scientist" | "Data Engineer" | "Data Analyst"
	Company  string // substring match on company name
	Window   string // 24h | 7d | all
	Limit    int
}

func ListHits(ctx context.Context, db *sql.DB, opts ListHitsOpts) ([]JobHit, error) {
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}

	conds := []string{"h.is_active = 1"}
	var args []any
	if opts.Category != "" {
		conds = append(conds, "h.category = ?")
		args = append(args, opts.Category)
	}
	if s := strings.TrimSpace(opts.Company); s != "" {
		conds = append(conds, "c.name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	switch opts.Window {
	case "24h":
		conds = append(conds, "h.found_at >= datetime('now','-24 hours')")
	case "all":
	default: // 7d
		conds = append(conds, "h.found_at >= datetime('now','-7 days')")
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`
SELECT h.id, h.company_id, c.name, h.title, h.apply_url, h.source, h.raw_snippet,
       h.is_active, h.category, h.first_seen_at, h.found_at
FROM job_hits h
JOIN companies c ON c.id = h.company_id
WHERE %s
ORDER BY h.found_at DESC, h.id DESC
LIMIT ?;`, strings.Join(conds, " AND "))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobHit
	for rows.Next() {
		var h JobHit
		var active int
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.CompanyName, &h.Title, &h.ApplyURL,
			&h.Source, &h.RawSnippet, &active, &h.Category, &h.FirstSeenAt, &h.FoundAt); err != nil {
			return nil, err
		}
		h.Active = active != 0
		out = append(out, h)
	}
	return out, rows.Err()
}

func CountHits(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_hits WHERE is_active = 1;`).Scan(&n)
	return n, err
}
