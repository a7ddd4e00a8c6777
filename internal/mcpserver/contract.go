package mcpserver

// EventFormatContract describes the event input accepted by add_event.
const EventFormatContract = `# Luach Event Format

Events are dated entries in one of three collections.

## Fields

| Field | Required | Notes |
|---|---|---|
| title | yes | Non-blank text. |
| gregorian_date | yes | ` + "`YYYY-MM-DD`" + `, the canonical date. |
| hebrew_date | no | Free text, e.g. ` + "`י\"ח אלול`" + `. Not converted. |
| category | no | ` + "`personal`" + ` (default), ` + "`chassidic`" + ` or ` + "`community`" + `. |
| event_type | no | ` + "`birthday`" + `, ` + "`married`" + `, ` + "`pass_away`" + `, ` + "`event`" + ` (default) or ` + "`other`" + `. |
| description | no | Free text. |
| has_reminder | no | Boolean. |
| reminder_days | no | Days before the date to remind. Defaults to 7 when a reminder is set. |

## Rules

1. Ids are assigned by the server; never send one.
2. Birthdays, anniversaries (` + "`married`" + `) and yahrzeits (` + "`pass_away`" + `) recur
   yearly in calendar exports.
3. Chassidic dates from the catalog are managed with ` + "`apply_catalog`" + `: pass the
   full set of catalog ids that should be present. Entries not listed are removed.
4. Adding a chassidic event whose title equals a catalog title makes it count as
   that catalog entry.

## Example

` + "```" + `json
{
  "title": "Grandfather's yahrzeit",
  "gregorian_date": "2024-09-21",
  "hebrew_date": "י\"ח אלול",
  "category": "personal",
  "event_type": "pass_away",
  "has_reminder": true,
  "reminder_days": 3
}
` + "```" + `
`
