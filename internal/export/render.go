// Package export renders entries and the schema into downloadable artifacts
// and stores them in a blob store.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"worklog/pkg/domain"
)

// CSVHeader is the column order of EntriesCSV.
var CSVHeader = []string{"date", "dayNumber", "project", "categories", "title", "description", "technologies", "teamType", "createdAt"}

const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// EntriesCSV renders one row per entry under CSVHeader. Categories are
// joined by "; " and technologies render as "Tech (a, b)" joined by " | ".
func EntriesCSV(entries []domain.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, e := range entries {
		if err := w.Write(entryRow(e)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func entryRow(e domain.Entry) []string {
	created := ""
	if !e.CreatedAt.IsZero() {
		created = e.CreatedAt.UTC().Format(createdAtLayout)
	}
	return []string{
		e.Date,
		strconv.Itoa(e.DayNumber),
		e.Project,
		strings.Join(e.Categories, "; "),
		e.Title,
		e.Description,
		FormatTechnologies(e.Technologies),
		string(e.TeamType),
		created,
	}
}

// FormatTechnologies renders selections as "Go (Gin, Cobra) | Redis".
func FormatTechnologies(selections []domain.TechSelection) string {
	parts := make([]string, 0, len(selections))
	for _, sel := range selections {
		if len(sel.SubTechs) == 0 {
			parts = append(parts, sel.Tech)
			continue
		}
		parts = append(parts, sel.Tech+" ("+strings.Join(sel.SubTechs, ", ")+")")
	}
	return strings.Join(parts, " | ")
}

// SchemaJSON renders the schema as two-space indented JSON.
func SchemaJSON(schema domain.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return data, nil
}

// EntriesFilename is the CSV download name for date.
func EntriesFilename(now time.Time) string {
	return "worklog_export_" + now.UTC().Format("2006-01-02") + ".csv"
}

// SchemaFilename is the schema download name for date.
func SchemaFilename(now time.Time) string {
	return "worklog_schema_" + now.UTC().Format("2006-01-02") + ".json"
}
