package entity

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"time"
)

// EventTime is the event date as the admin console sends it: a datetime-local
// value without seconds or zone. RFC 3339 input is accepted as well and is
// converted to UTC, the zone every stored and rendered value is in.
type EventTime struct {
	time.Time
}

const eventTimeLayout = "2006-01-02T15:04"

var eventTimeInputLayouts = []string{
	eventTimeLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

func NewEventTime(t time.Time) EventTime {
	return EventTime{Time: t.UTC().Truncate(time.Minute)}
}

func ParseEventTime(s string) (EventTime, error) {
	for _, layout := range eventTimeInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewEventTime(t), nil
		}
	}
	return EventTime{}, fmt.Errorf("cannot parse %q as event time", s)
}

func (et *EventTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("event time must be a string")
	}
	parsed, err := ParseEventTime(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*et = parsed
	return nil
}

func (et EventTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + et.Format(eventTimeLayout) + `"`), nil
}

func (et EventTime) Value() (driver.Value, error) {
	return et.Time.UTC(), nil
}

func (et *EventTime) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		*et = NewEventTime(v)
	case []byte:
		t, err := time.Parse("2006-01-02 15:04:05", string(v))
		if err != nil {
			return err
		}
		*et = NewEventTime(t)
	default:
		return fmt.Errorf("cannot scan type %T into EventTime", value)
	}
	return nil
}
