package core

import "sort"

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    Money    `json:"total"`
}

// Summary is the backend-computed aggregate over all expenses. It is never
// persisted and the client never caches it.
type Summary struct {
	Total      Money           `json:"total"`
	Monthly    Money           `json:"monthly"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Summarize totals the given expenses. month is a YYYY-MM key selecting the
// expenses that count towards Monthly.
func Summarize(expenses []Expense, month string) Summary {
	var s Summary
	byCat := make(map[Category]Money)
	for _, e := range expenses {
		s.Total = s.Total.Add(e.Amount)
		if e.Date.MonthKey() == month {
			s.Monthly = s.Monthly.Add(e.Amount)
		}
		byCat[e.Category] = byCat[e.Category].Add(e.Amount)
	}
	for cat, total := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return s
}
