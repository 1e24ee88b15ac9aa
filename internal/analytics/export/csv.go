package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/agrilens/dashboard/internal/companies"
)

// CompanyHeader is the header row of a company CSV export.
var CompanyHeader = []string{"Name", "Category", "Stage", "Country", "Location", "Funding ($M)", "Founded", "Employees", "Status", "Technologies"}

// WriteCompaniesCSV serialises records in the given order. Absent values are
// written as empty cells.
func WriteCompaniesCSV(w io.Writer, records []companies.Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(CompanyHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write([]string{
			rec.Name,
			rec.Category,
			rec.Stage,
			rec.Country,
			rec.Location,
			formatFloat(rec.Funding),
			formatInt(rec.Founded),
			formatInt(rec.Employees),
			rec.StatusValue(),
			strings.Join(rec.Tech, "; "),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
