package analytics

import (
	"sort"
	"strings"
	"time"
)

// monthLayouts are tried in order after the canonical "Jan 2006".
var monthLayouts = []string{
	"January 2006",
	"Jan-2006",
	"Jan-06",
	"Jan 06",
	"2006-01",
	"2006/01",
	"01/2006",
	"1/2006",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseMonthLabel parses labels like "Jan 2025" into a sortable time. Labels
// that match no known layout return the zero time and sort first.
func ParseMonthLabel(label string) time.Time {
	s := strings.TrimSpace(label)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse("Jan 2006", s); err == nil {
		return t
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type LabeledValue struct {
	Label string
	Value float64
}

// MergedPeriod is one month of collections against expenses.
type MergedPeriod struct {
	Label       string
	Collections float64
	Expenses    float64
}

// MergeMonthly outer-joins collections and expenses on the literal label,
// zero-filling gaps, and orders the result chronologically. Labels that repeat
// within one input are summed. Ties keep first-seen order.
func MergeMonthly(collections, expenses []LabeledValue) []MergedPeriod {
	index := map[string]int{}
	merged := make([]MergedPeriod, 0, len(collections)+len(expenses))

	slot := func(label string) *MergedPeriod {
		i, ok := index[label]
		if !ok {
			i = len(merged)
			index[label] = i
			merged = append(merged, MergedPeriod{Label: label})
		}
		return &merged[i]
	}

	for _, lv := range collections {
		slot(lv.Label).Collections += lv.Value
	}
	for _, lv := range expenses {
		slot(lv.Label).Expenses += lv.Value
	}

	keys := make(map[string]time.Time, len(merged))
	for _, p := range merged {
		keys[p.Label] = ParseMonthLabel(p.Label)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return keys[merged[i].Label].Before(keys[merged[j].Label])
	})
	return merged
}
