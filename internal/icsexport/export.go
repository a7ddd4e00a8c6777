// Package icsexport renders events as an iCalendar feed.
package icsexport

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/starford/luach/internal/models"
)

// ProductID identifies the feed producer.
const ProductID = "-//Luach//Chassidic Dates//EN"

// Options controls feed metadata.
type Options struct {
	Name string
	// Domain suffixes event UIDs.
	Domain string
	Now    time.Time
}

// Calendar builds the iCalendar document for events.
//
// Events are all-day. Birthdays, anniversaries and yahrzeits repeat yearly;
// events with a reminder carry a display alarm ReminderDays before.
func Calendar(events []models.Event, opts Options) (*ical.Calendar, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Domain == "" {
		opts.Domain = "luach.local"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, ev := range events {
		ve := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, opts.Domain))
		ve.SetDtStampTime(opts.Now.UTC())
		ve.SetAllDayStartAt(ev.Date)
		ve.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		ve.SetSummary(ev.Title)
		if desc := description(ev); desc != "" {
			ve.SetDescription(desc)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, string(ev.Category))

		if ev.EventType.Recurring() {
			rule, err := yearly(ev.Date)
			if err != nil {
				return nil, fmt.Errorf("icsexport: event %s: %w", ev.ID, err)
			}
			ve.AddRrule(rule)
		}

		if ev.HasReminder && ev.ReminderDays > 0 {
			alarm := ve.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-P%dD", ev.ReminderDays))
			alarm.SetProperty(ical.ComponentPropertyDescription, ev.Title)
		}
	}
	return cal, nil
}

// Write serializes the calendar for events to w.
func Write(w io.Writer, events []models.Event, opts Options) error {
	cal, err := Calendar(events, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}

func yearly(start time.Time) (string, error) {
	r, err := rrule.NewRRule(rrule.ROption{Freq: rrule.YEARLY, Dtstart: start})
	if err != nil {
		return "", err
	}
	return r.OrigOptions.RRuleString(), nil
}

func description(ev models.Event) string {
	switch {
	case ev.HebrewDate != "" && ev.Description != "":
		return ev.HebrewDate + " - " + ev.Description
	case ev.HebrewDate != "":
		return ev.HebrewDate
	default:
		return ev.Description
	}
}
