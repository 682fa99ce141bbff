package config

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// millisecondsHook reads a bare number destined for a time.Duration as
// milliseconds, so API_TIMEOUT=5000 and "timeout: 5000" both mean 5s.
// Values with a unit ("5s") fall through to the standard duration hook.
func millisecondsHook(_, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return data, nil
		}

		return time.Duration(n) * time.Millisecond, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil //nolint:gosec // config values are small
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	default:
		return data, nil
	}
}
