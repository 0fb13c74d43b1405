package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"datajobs-engine/internal/domain"
)

var truthy = map[string]bool{
	"1": true, "true": true, "t": true, "yes": true, "y": true,
}

// ImportCompaniesCSV reads rows shaped
// name,homepage_url,careers_url,ats,is_active (legacy "active" accepted)
// and upserts each by name. Column order is free; a header row is required.
func ImportCompaniesCSV(ctx context.Context, db *sql.DB, r io.Reader) (created, updated int, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["name"]; !ok {
		return 0, 0, fmt.Errorf("csv must include at least: name, homepage_url")
	}
	if _, ok := col["homepage_url"]; !ok {
		return 0, 0, fmt.Errorf("csv must include at least: name, homepage_url")
	}

	get := func(rec []string, key string) string {
		i, ok := col[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, updated, fmt.Errorf("read csv row: %w", err)
		}

		name := get(rec, "name")
		if name == "" {
			continue
		}
		ats := strings.ToUpper(get(rec, "ats"))
		if ats == "" {
			ats = "AUTO"
		}
		activeRaw := get(rec, "is_active")
		if activeRaw == "" {
			activeRaw = get(rec, "active")
		}
		if activeRaw == "" {
			activeRaw = "1"
		}

		var existing int64
		exists := db.QueryRowContext(ctx, `SELECT id FROM companies WHERE name = ?;`, name).Scan(&existing) == nil

		_, err = UpsertCompany(ctx, db, domain.Company{
			Name:         name,
			HomepageURL:  get(rec, "homepage_url"),
			CareersURL:   get(rec, "careers_url"),
			DataQueryURL: get(rec, "data_query_url"),
			ATS:          ats,
			Active:       truthy[strings.ToLower(activeRaw)],
		})
		if err != nil {
			return created, updated, err
		}
		if exists {
			updated++
		} else {
			created++
		}
	}
	return created, updated, nil
}

// ExportCompaniesCSV writes the company roster in the import format.
func ExportCompaniesCSV(ctx context.Context, db *sql.DB, w io.Writer) error {
	companies, err := ListCompanies(ctx, db, ListCompaniesOpts{Limit: 5000})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "homepage_url", "careers_url", "data_query_url", "ats", "is_active"}); err != nil {
		return err
	}
	for _, co := range companies {
		active := "0"
		if co.Active {
			active = "1"
		}
		if err := cw.Write([]string{co.Name, co.HomepageURL, co.CareersURL, co.DataQueryURL, co.ATS, active}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
