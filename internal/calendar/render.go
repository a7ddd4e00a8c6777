package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Text renders the grid as plain text: a header, one row per week with
// adjacent-month days left blank and event days marked with '*', then the
// month's events in date order.
func (m Month) Text() string {
	var b strings.Builder
	title := fmt.Sprintf("%s %d", m.Month, m.Year)
	fmt.Fprintf(&b, "%*s\n", (7*4+len(title))/2, title)

	var row strings.Builder
	for i := 0; i < 7; i++ {
		wd := (m.FirstWeekday + time.Weekday(i)) % 7
		fmt.Fprintf(&row, "%4s", wd.String()[:2])
	}
	b.WriteString(row.String())
	b.WriteByte('\n')

	for _, week := range m.Weeks {
		row.Reset()
		for _, d := range week {
			if !d.InCurrentMonth {
				row.WriteString("    ")
				continue
			}
			mark := ' '
			if len(d.Events) > 0 {
				mark = '*'
			}
			fmt.Fprintf(&row, "%3d%c", d.Date.Day(), mark)
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
		b.WriteByte('\n')
	}

	for _, d := range m.Days() {
		if !d.InCurrentMonth {
			continue
		}
		for _, ev := range d.Events {
			fmt.Fprintf(&b, "%2d  %s (%s)\n", d.Date.Day(), ev.Title, ev.Category)
		}
	}
	return b.String()
}
