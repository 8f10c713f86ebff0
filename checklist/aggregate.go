package checklist

import (
	"sort"
)

// Row carries the raw stored checklists of one inspection.
type Row struct {
	DefectiveItems    []byte
	TruckTrailerItems []byte
}

// Count is how often one item was reported defective.
type Count struct {
	ItemKey string   `json:"item_key"`
	Count   int      `json:"count"`
	Type    Category `json:"type"`
	Label   string   `json:"label"`
}

// Report is the defect frequency breakdown over a set of inspections.
type Report struct {
	Items            []Count `json:"items"`
	TotalInspections int     `json:"total_inspections"`
	ParseErrors      int     `json:"parse_errors"`
}

// Aggregate counts defective items across rows. Each checklist is decoded
// independently; a malformed one is skipped and counted in ParseErrors.
// Items with a zero count are omitted and the result is ordered by count,
// highest first, ties keeping catalog order.
func Aggregate(rows []Row, catalog *Catalog) Report {
	report := Report{TotalInspections: len(rows)}

	counts := map[Category]map[string]int{
		CategoryCar:          {},
		CategoryTruckTrailer: {},
	}

	tally := func(cat Category, raw []byte) {
		items, err := Decode(raw)
		if err != nil {
			report.ParseErrors++
			return
		}
		for key, v := range items {
			if IsChecked(v) {
				counts[cat][key]++
			}
		}
	}

	for _, row := range rows {
		tally(CategoryCar, row.DefectiveItems)
		tally(CategoryTruckTrailer, row.TruckTrailerItems)
	}

	report.Items = make([]Count, 0)
	for _, cat := range []Category{CategoryCar, CategoryTruckTrailer} {
		for _, key := range orderedKeys(catalog, cat, counts[cat]) {
			report.Items = append(report.Items, Count{
				ItemKey: key,
				Count:   counts[cat][key],
				Type:    cat,
				Label:   catalog.Label(cat, key),
			})
		}
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Count > report.Items[j].Count
	})

	return report
}

// orderedKeys lists counted keys in catalog order, then unknown keys alphabetically.
func orderedKeys(catalog *Catalog, cat Category, counts map[string]int) []string {
	known := make([]string, 0, len(counts))
	unknown := make([]string, 0)
	for key := range counts {
		if _, ok := catalog.Position(cat, key); ok {
			known = append(known, key)
		} else {
			unknown = append(unknown, key)
		}
	}

	sort.Slice(known, func(i, j int) bool {
		pi, _ := catalog.Position(cat, known[i])
		pj, _ := catalog.Position(cat, known[j])
		return pi < pj
	})
	sort.Strings(unknown)

	return append(known, unknown...)
}
