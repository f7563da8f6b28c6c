// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package clock

import (
	"fmt"
	"time"
)

// timestampLayouts lists accepted input formats, tried in order. RFC 3339
// is the documented format; the laxer variants match what the upstream
// service's parser tolerated.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a client-supplied timestamp. Layouts without an
// explicit zone are interpreted as UTC. The result is truncated to whole
// seconds, matching storage granularity.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.Truncate(time.Second).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
