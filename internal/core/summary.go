package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDailyWindow is the trailing window, in days, of DailySpending.
const DefaultDailyWindow = 30

// CategoryAmount is a category with its summed amount.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// CategorySummaryEntry aggregates the records of one category.
type CategorySummaryEntry struct {
	Category   Category `json:"category"`
	Amount     Money    `json:"amount"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// DailyAmount is the spending of one calendar day.
type DailyAmount struct {
	Date   string `json:"date"`
	Amount Money  `json:"amount"`
}

// SummaryStats is the headline dashboard summary.
type SummaryStats struct {
	Total       Money           `json:"totalSpending"`
	Monthly     Money           `json:"monthlySpending"`
	Count       int             `json:"expenseCount"`
	Average     Money           `json:"averageExpense"`
	TopCategory *CategoryAmount `json:"topCategory"`
}

// Total sums the amounts of records.
func Total(records []Expense) Money {
	var total Money
	for _, e := range records {
		total = total.Add(e.Amount)
	}
	return total
}

// Summarize computes the summary statistics of records relative to now.
// Monthly covers records dated within now's calendar month, inclusive.
func Summarize(records []Expense, now time.Time) SummaryStats {
	stats := SummaryStats{
		Total: Total(records),
		Count: len(records),
	}
	if stats.Count > 0 {
		avg := stats.Total.Decimal().Div(decimal.NewFromInt(int64(stats.Count))).Round(2)
		stats.Average = Money{Cents: avg.Shift(2).IntPart()}
	}

	start, end := monthBounds(now)
	for _, e := range records {
		t, ok := ParseDate(e.Date, now.Location())
		if ok && withinInclusive(t, start, end) {
			stats.Monthly = stats.Monthly.Add(e.Amount)
		}
	}

	if cats := SummarizeCategories(records); len(cats) > 0 {
		stats.TopCategory = &CategoryAmount{Category: cats[0].Category, Amount: cats[0].Amount}
	}
	return stats
}

// SummarizeCategories groups records by category. Entries are ordered by
// amount descending; equal amounts keep first-occurrence order.
func SummarizeCategories(records []Expense) []CategorySummaryEntry {
	index := map[Category]int{}
	out := []CategorySummaryEntry{}
	var total int64
	for _, e := range records {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategorySummaryEntry{Category: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
		out[i].Count++
		total += e.Amount.Cents
	}
	for i := range out {
		if total > 0 {
			out[i].Percentage = float64(out[i].Amount.Cents) * 100 / float64(total)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// DailySpending sums records per calendar day over [now-windowDays, now].
// Days without records are absent; see FillDailyGaps for a dense series.
// Dates that do not parse are skipped.
func DailySpending(records []Expense, now time.Time, windowDays int) []DailyAmount {
	if windowDays <= 0 {
		windowDays = DefaultDailyWindow
	}
	start := now.AddDate(0, 0, -windowDays)

	byDay := map[string]int64{}
	for _, e := range records {
		t, ok := ParseDate(e.Date, now.Location())
		if !ok || !withinInclusive(t, start, now) {
			continue
		}
		byDay[t.In(now.Location()).Format(DateLayout)] += e.Amount.Cents
	}

	out := make([]DailyAmount, 0, len(byDay))
	for day, cents := range byDay {
		out = append(out, DailyAmount{Date: day, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// FillDailyGaps expands a sparse series into one entry per calendar day of
// the window ending at now, with zero amounts for missing days.
func FillDailyGaps(series []DailyAmount, now time.Time, windowDays int) []DailyAmount {
	if windowDays <= 0 {
		windowDays = DefaultDailyWindow
	}
	byDay := make(map[string]Money, len(series))
	for _, d := range series {
		byDay[d.Date] = d.Amount
	}

	// The window start usually falls mid-day. Its calendar day only appears
	// when a record dated after the start instant landed on it.
	start := now.AddDate(0, 0, -windowDays)
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	if _, ok := byDay[first.Format(DateLayout)]; !ok && first.Before(start) {
		first = first.AddDate(0, 0, 1)
	}
	last := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]DailyAmount, 0, windowDays+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		out = append(out, DailyAmount{Date: key, Amount: byDay[key]})
	}
	return out
}
