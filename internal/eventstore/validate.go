package eventstore

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/models"
)

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

func categoryValues() []interface{} {
	out := make([]interface{}, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = c
	}
	return out
}

func eventTypeValues() []interface{} {
	out := make([]interface{}, len(models.EventTypes))
	for i, t := range models.EventTypes {
		out[i] = t
	}
	return out
}

// normalize fills the defaults the entry forms use for omitted fields.
func normalize(in models.EventInput) models.EventInput {
	if in.Category == "" {
		in.Category = models.CategoryPersonal
	}
	if in.EventType == "" {
		in.EventType = models.EventTypeEvent
	}
	if in.HasReminder && in.ReminderDays == 0 {
		in.ReminderDays = models.DefaultReminderDays
	}
	return in
}

// validateInput checks every field of in and returns the parsed date.
func validateInput(in models.EventInput) (time.Time, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, notBlank),
		validation.Field(&in.GregorianDate, validation.Required, validation.Date(models.DateLayout)),
		validation.Field(&in.Category, validation.Required, validation.In(categoryValues()...)),
		validation.Field(&in.EventType, validation.Required, validation.In(eventTypeValues()...)),
		validation.Field(&in.ReminderDays,
			validation.Min(0),
			validation.When(in.HasReminder, validation.Required, validation.Min(1)),
		),
	)
	if err != nil {
		return time.Time{}, apperr.Invalid(err)
	}
	return ParseDate(in.GregorianDate)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Invalidf("gregorian_date: %q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}

func inputOf(e models.Event) models.EventInput {
	return models.EventInput{
		Title:         e.Title,
		HebrewDate:    e.HebrewDate,
		GregorianDate: e.GregorianDate,
		Category:      e.Category,
		EventType:     e.EventType,
		Description:   e.Description,
		HasReminder:   e.HasReminder,
		ReminderDays:  e.ReminderDays,
		CatalogID:     e.CatalogID,
	}
}

func applyPatch(in models.EventInput, p models.EventPatch) models.EventInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.HebrewDate != nil {
		in.HebrewDate = *p.HebrewDate
	}
	if p.GregorianDate != nil {
		in.GregorianDate = *p.GregorianDate
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.EventType != nil {
		in.EventType = *p.EventType
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.HasReminder != nil {
		in.HasReminder = *p.HasReminder
	}
	if p.ReminderDays != nil {
		in.ReminderDays = *p.ReminderDays
	}
	return in
}
