// internal/app/system/csvutil/students.go
package csvutil

import (
	"encoding/csv"
	"html/template"
	"io"
	"strings"
)

// StudentCSVRow is the normalized row produced by PreScanStudentsCSV.
type StudentCSVRow struct {
	FullName   string
	Email      string
	Department string
}

// PreScanStudentsCSV reads all rows from r, skips a header if present,
// validates each row, and either returns normalized rows OR a formatted
// HTML error message (template.HTML) describing the first few bad lines.
// It never writes to a DB; it's safe to call before any mutations.
func PreScanStudentsCSV(r io.Reader) (rows []StudentCSVRow, htmlErr template.HTML, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Pull first row to check header
	first, ferr := reader.Read()
	if ferr == io.EOF {
		first = nil
	} else if ferr != nil {
		return nil, template.HTML(template.HTMLEscapeString(ferr.Error())), nil
	}
	var raw [][]string
	if len(first) >= 2 &&
		(strings.EqualFold(strings.TrimSpace(first[0]), "full name") ||
			strings.EqualFold(strings.TrimSpace(first[0]), "name")) &&
		strings.EqualFold(strings.TrimSpace(first[1]), "email") {
		// header detected → skip
	} else if first != nil {
		raw = append(raw, first)
	}
	for {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		if e != nil || len(rec) == 0 {
			continue
		}
		raw = append(raw, rec)
	}

	type rowErr struct{ Email, Name, Reason string }
	var errs []rowErr
	normalize := func(rec []string) StudentCSVRow {
		var n, e, d string
		if len(rec) > 0 {
			n = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			e = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			d = strings.TrimSpace(rec[2])
		}
		return StudentCSVRow{FullName: n, Email: e, Department: d}
	}

	for _, rec := range raw {
		row := normalize(rec)
		if row.FullName == "" && row.Email == "" && row.Department == "" {
			continue
		}
		if row.FullName == "" {
			errs = append(errs, rowErr{
				Email: strings.ToLower(row.Email), Name: row.FullName, Reason: "missing full name",
			})
		}
		if row.Email == "" || !strings.Contains(row.Email, "@") {
			errs = append(errs, rowErr{
				Email: row.Email, Name: row.FullName, Reason: "invalid or missing email",
			})
		}
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		var b strings.Builder
		b.WriteString("Upload rejected: one or more rows are invalid.<br>")
		b.WriteString("Each row must have a Full Name and an Email; the Department column is optional.<br>")

		max := 5
		if len(errs) < max {
			max = len(errs)
		}
		if max > 0 {
			b.WriteString("Examples:<br>")
			for i := 0; i < max; i++ {
				e := errs[i]
				email := strings.TrimSpace(e.Email)
				if email == "" {
					email = "(no email on row)"
				}
				name := strings.TrimSpace(e.Name)
				if name == "" {
					name = "(missing)"
				}
				b.WriteString("• ")
				b.WriteString(template.HTMLEscapeString(email))
				b.WriteString(" | ")
				b.WriteString(template.HTMLEscapeString(name))
				b.WriteString(" → ")
				b.WriteString(template.HTMLEscapeString(e.Reason))
				b.WriteString("<br>")
			}
		}
		return nil, template.HTML(b.String()), nil
	}

	return rows, "", nil
}
