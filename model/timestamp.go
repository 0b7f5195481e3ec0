package model

import (
	"time"

	"github.com/teranos/ftm/errors"
)

// TimestampLayout is the wire format of entity and statement timestamps:
// UTC, second precision, no zone suffix.
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders epoch seconds in TimestampLayout.
func FormatTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(TimestampLayout)
}

// ParseTimestamp converts a TimestampLayout string to epoch seconds. Anything
// else, including fractional seconds or a zone suffix, is rejected.
func ParseTimestamp(value string) (int64, error) {
	if len(value) != len(TimestampLayout) {
		return 0, errors.NewInvalidArgument("invalid timestamp %q", value)
	}
	t, err := time.ParseInLocation(TimestampLayout, value, time.UTC)
	if err != nil {
		return 0, errors.NewInvalidArgument("invalid timestamp %q: %v", value, err)
	}
	return t.Unix(), nil
}

// Now is the current time in epoch seconds.
func Now() int64 {
	return time.Now().Unix()
}
