package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"datajobs-engine/internal/domain"
)

const timeLayout = time.RFC3339

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func scanCompany(rows interface{ Scan(...any) error }) (domain.Company, error) {
	var co domain.Company
	var active int
	var checked, found sql.NullString
	err := rows.Scan(&co.ID, &co.Name, &co.HomepageURL, &co.CareersURL,
		&co.DataQueryURL, &co.ATS, &active, &checked, &found)
	if err != nil {
		return domain.Company{}, err
	}
	co.Active = active != 0
	co.LastCheckedAt = parseTimePtr(checked)
	co.LastFoundAt = parseTimePtr(found)
	return co, nil
}

const companyCols = `id, name, homepage_url, careers_url, data_query_url, ats, is_active, last_checked_at, last_found_at`

// ListActiveCompanies returns active companies that have at least one URL to
// scrape from, ordered by name.
func ListActiveCompanies(ctx context.Context, db *sql.DB) ([]domain.Company, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+companyCols+`
FROM companies
WHERE is_active = 1
  AND (careers_url != '' OR data_query_url != '' OR homepage_url != '')
ORDER BY name;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		co, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, rows.Err()
}

type ListCompaniesOpts struct {
	NameLike   string
	OnlyActive bool
	Limit      int
}

func ListCompanies(ctx context.Context, db *sql.DB, opts ListCompaniesOpts) ([]domain.Company, error) {
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 1000
	}
	var conds []string
	var args []any
	if opts.OnlyActive {
		conds = append(conds, "is_active = 1")
	}
	if s := strings.TrimSpace(opts.NameLike); s != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+s+"%")
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
SELECT %s FROM companies %s ORDER BY name LIMIT ?;`, companyCols, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		co, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, rows.Err()
}

// UpsertCompany inserts or updates by unique name, returning the row id.
// Empty incoming URL fields never blank out existing ones.
func UpsertCompany(ctx context.Context, db *sql.DB, co domain.Company) (int64, error) {
	name := strings.TrimSpace(co.Name)
	if name == "" {
		return 0, fmt.Errorf("upsert company: empty name")
	}
	ats := strings.TrimSpace(co.ATS)
	if ats == "" {
		ats = "AUTO"
	}
	active := 0
	if co.Active {
		active = 1
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO companies (name, homepage_url, careers_url, data_query_url, ats, is_active)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  homepage_url   = CASE WHEN excluded.homepage_url   != '' THEN excluded.homepage_url   ELSE companies.homepage_url   END,
  careers_url    = CASE WHEN excluded.careers_url    != '' THEN excluded.careers_url    ELSE companies.careers_url    END,
  data_query_url = CASE WHEN excluded.data_query_url != '' THEN excluded.data_query_url ELSE companies.data_query_url END,
  ats            = excluded.ats,
  is_active      = excluded.is_active;
`, name, strings.TrimSpace(co.HomepageURL), strings.TrimSpace(co.CareersURL),
		strings.TrimSpace(co.DataQueryURL), ats, active)
	if err != nil {
		return 0, fmt.Errorf("upsert company %q: %w", name, err)
	}

	var id int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM companies WHERE name = ?;`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateCompanyCheckpoint stamps last_checked_at and, when the run found
// anything, last_found_at.
func UpdateCompanyCheckpoint(ctx context.Context, db *sql.DB, companyID int64, checkedAt time.Time, foundAt *time.Time) error {
	if foundAt != nil {
		_, err := db.ExecContext(ctx, `
UPDATE companies SET last_checked_at = ?, last_found_at = ? WHERE id = ?;`,
			fmtTime(checkedAt), fmtTime(*foundAt), companyID)
		return err
	}
	_, err := db.ExecContext(ctx, `
UPDATE companies SET last_checked_at = ? WHERE id = ?;`,
		fmtTime(checkedAt), companyID)
	return err
}

// UpdateCompanyDiscovery persists a refreshed careers URL and platform hint.
func UpdateCompanyDiscovery(ctx context.Context, db *sql.DB, companyID int64, careersURL, ats string) error {
	_, err := db.ExecContext(ctx, `
UPDATE companies SET careers_url = ?, ats = ? WHERE id = ?;`,
		strings.TrimSpace(careersURL), strings.TrimSpace(ats), companyID)
	return err
}
