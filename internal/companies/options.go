package companies

import "sort"

// FilterOptions lists the distinct values offered by the dashboard dropdowns.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Stages     []string `json:"stages"`
	Countries  []string `json:"countries"`
}

// Options collects distinct non-empty categories, stages and countries, each
// sorted ascending.
func (d *Dataset) Options() FilterOptions {
	records := d.Records()
	return FilterOptions{
		Categories: distinct(records, func(r Record) string { return r.Category }),
		Stages:     distinct(records, func(r Record) string { return r.Stage }),
		Countries:  distinct(records, func(r Record) string { return r.Country }),
	}
}

func distinct(records []Record, field func(Record) string) []string {
	seen := make(map[string]struct{}, len(records))
	values := make([]string, 0)
	for _, rec := range records {
		v := field(rec)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
