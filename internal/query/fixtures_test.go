package query

import (
	"fmt"

	"github.com/agrilens/dashboard/internal/companies"
)

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }

func names(records []companies.Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Name)
	}
	return out
}

// sampleRecords is a small hand-written dataset covering missing fields.
func sampleRecords() []companies.Record {
	return []companies.Record{
		{Name: "FarmWise", Category: "Robotics", Stage: "Series B", Country: "USA", Location: "San Francisco, CA", Funding: ptrFloat(65), Founded: ptrInt(2016), Tech: companies.TechList{"Computer Vision", "Robotics"}},
		{Name: "Indigo Ag", Category: "Biologicals", Stage: "Series F", Country: "USA", Location: "Boston, MA", Funding: ptrFloat(1400), Founded: ptrInt(2014), Tech: companies.TechList{"Microbiome", "Carbon Markets"}},
		{Name: "CropX", Category: "Soil Sensing", Stage: "Series C", Country: "Israel", Location: "Tel Aviv", Funding: ptrFloat(65), Founded: ptrInt(2015), Tech: companies.TechList{"Precision Agriculture", "IoT"}},
		{Name: "Bowery", Category: "Indoor Farming", Stage: "Series C", Country: "USA", Funding: ptrFloat(645), Founded: ptrInt(2015)},
		{Name: "Taranis", Category: "Imagery", Stage: "Series D", Country: "Israel", Location: "Tel Aviv", Tech: companies.TechList{"Drones"}},
		{Name: "agroSmart", Category: "Imagery", Stage: "Seed", Founded: ptrInt(2014)},
	}
}

// generatedRecords returns n records whose names sort as Company 01..n.
// They are emitted in reverse alphabetical order.
func generatedRecords(n int) []companies.Record {
	out := make([]companies.Record, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, companies.Record{
			Name:     fmt.Sprintf("Company %02d", i),
			Category: []string{"Robotics", "Biologicals", "Imagery"}[i%3],
			Stage:    []string{"Seed", "Series A", "Series B"}[i%3],
			Country:  []string{"USA", "Israel", "India", "Brazil"}[i%4],
			Funding:  ptrFloat(float64(i * 10)),
			Founded:  ptrInt(2000 + i%20),
		})
	}
	return out
}

func datasetOf(records []companies.Record) *companies.Dataset {
	return &companies.Dataset{Companies: records}
}

type recordingSinks struct {
	rows       [][]string
	empties    int
	counts     [][3]int
	noResults  int
	pagination []PaginationView
	scrolls    int
}

func (r *recordingSinks) RenderRows(rows []companies.Record) { r.rows = append(r.rows, names(rows)) }
func (r *recordingSinks) RenderEmpty()                       { r.empties++ }
func (r *recordingSinks) RenderCount(start, end, total int) {
	r.counts = append(r.counts, [3]int{start, end, total})
}
func (r *recordingSinks) RenderNoResults()                  { r.noResults++ }
func (r *recordingSinks) RenderPagination(v PaginationView) { r.pagination = append(r.pagination, v) }
func (r *recordingSinks) ScrollToResults()                  { r.scrolls++ }

func (r *recordingSinks) calls() int {
	return len(r.rows) + r.empties + len(r.counts) + r.noResults + len(r.pagination) + r.scrolls
}

func (r *recordingSinks) sinks() Sinks {
	return Sinks{Table: r, Counter: r, Pagination: r, Scroller: r}
}
