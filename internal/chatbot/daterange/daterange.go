// Package daterange converts relative and named time phrases into SQL
// predicate templates over a created_at timestamp column.
package daterange

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shop-chatbot/internal/chatbot/patterns"
)

// Bound is the resolved date scope of a question. Conditions are predicate
// templates over created_at; Params bind the `?` placeholders they contain,
// in order. Descriptor is the human-readable period suffix for replies.
type Bound struct {
	Conditions []string
	Params     []interface{}
	Descriptor string
}

// Empty reports whether no temporal phrase was recognized.
func (b Bound) Empty() bool {
	return len(b.Conditions) == 0
}

// Relative period templates, resolved against now() at query time so they
// carry no bound parameters.
const (
	condThisMonth = "date_trunc('month', created_at) = date_trunc('month', now())"
	condLastMonth = "date_trunc('month', created_at) = date_trunc('month', now() - interval '1 month')"
	condThisYear  = "date_part('year', created_at) = date_part('year', now())"
	condLastYear  = "date_part('year', created_at) = date_part('year', now()) - 1"
	condToday     = "created_at::date = current_date"
	condYesterday = "created_at::date = current_date - 1"
	condThisWeek  = "date_trunc('week', created_at) = date_trunc('week', now())"
	condLastWeek  = "date_trunc('week', created_at) = date_trunc('week', now() - interval '1 week')"
)

// Resolve parses the first recognized time phrase out of normalized text.
// Priority is fixed: relative periods, then "between MONTH and MONTH",
// then "in MONTH"; only one form applies. A month phrase without an
// explicit year token defaults to the year of now.
func Resolve(text string, now time.Time) Bound {
	switch {
	case patterns.ThisMonth.MatchString(text):
		return Bound{Conditions: []string{condThisMonth}, Descriptor: " this month"}
	case patterns.LastMonth.MatchString(text):
		return Bound{Conditions: []string{condLastMonth}, Descriptor: " last month"}
	case patterns.ThisYear.MatchString(text):
		return Bound{Conditions: []string{condThisYear}, Descriptor: " this year"}
	case patterns.LastYear.MatchString(text):
		return Bound{Conditions: []string{condLastYear}, Descriptor: " last year"}
	case patterns.Today.MatchString(text):
		return Bound{Conditions: []string{condToday}}
	case patterns.Yesterday.MatchString(text):
		return Bound{Conditions: []string{condYesterday}}
	case patterns.ThisWeek.MatchString(text):
		return Bound{Conditions: []string{condThisWeek}}
	case patterns.LastWeek.MatchString(text):
		return Bound{Conditions: []string{condLastWeek}}
	}

	if m := patterns.BetweenMonths.FindStringSubmatch(text); m != nil {
		start, okStart := patterns.Months[strings.ToLower(m[2])]
		end, okEnd := patterns.Months[strings.ToLower(m[4])]
		// Unrecognized month names skip the form entirely.
		if okStart && okEnd {
			year := yearIn(text, now)
			startDate := fmt.Sprintf("%04d-%02d-01", year, start)
			endDate := lastDayOfMonth(year, end)
			return Bound{
				Conditions: []string{"created_at::date BETWEEN ? AND ?"},
				Params:     []interface{}{startDate, endDate},
				Descriptor: " in the specified period",
			}
		}
	}

	if m := patterns.InMonth.FindStringSubmatch(text); m != nil {
		if month, ok := patterns.Months[strings.ToLower(m[2])]; ok {
			return Bound{
				Conditions: []string{"date_part('month', created_at) = ? AND date_part('year', created_at) = ?"},
				Params:     []interface{}{month, yearIn(text, now)},
				Descriptor: " in the specified period",
			}
		}
	}

	return Bound{}
}

// ForAlias rewrites the condition templates to address created_at through
// a table alias, for queries that join orders against other tables.
func (b Bound) ForAlias(alias string) Bound {
	if b.Empty() || alias == "" {
		return b
	}
	out := Bound{
		Conditions: make([]string, len(b.Conditions)),
		Params:     b.Params,
		Descriptor: b.Descriptor,
	}
	for i, c := range b.Conditions {
		out.Conditions[i] = strings.ReplaceAll(c, "created_at", alias+".created_at")
	}
	return out
}

func yearIn(text string, now time.Time) int {
	if m := patterns.YearToken.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	return now.Year()
}

func lastDayOfMonth(year, month int) string {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return last.Format("2006-01-02")
}
