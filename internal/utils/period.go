package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 支持的时间段单位，对应 datetime.timedelta 的关键字参数
var periodUnits = map[string]time.Duration{
	"weeks":        7 * 24 * time.Hour,
	"days":         24 * time.Hour,
	"hours":        time.Hour,
	"minutes":      time.Minute,
	"seconds":      time.Second,
	"milliseconds": time.Millisecond,
	"microseconds": time.Microsecond,
}

// ParsePeriod takes a string such as "days=1,minutes=30", strips optional
// surrounding quotes, and returns the total duration. A missing or empty
// argument, an unknown unit, or a non-integer value is an error.
func ParsePeriod(arg string) (time.Duration, error) {
	opt := strings.TrimSpace(arg)
	if len(opt) >= 2 && opt[0] == '"' && opt[len(opt)-1] == '"' {
		opt = opt[1 : len(opt)-1] // remove quotes
	}
	if opt == "" {
		return 0, fmt.Errorf("empty time period")
	}

	var period time.Duration
	for _, o := range strings.Split(opt, ",") {
		key, value, found := strings.Cut(o, "=")
		if !found {
			return 0, fmt.Errorf("invalid time period segment %q", o)
		}
		unit, ok := periodUnits[strings.TrimSpace(key)]
		if !ok {
			return 0, fmt.Errorf("unknown time period unit %q", key)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid time period value %q", value)
		}
		period += time.Duration(n) * unit
	}
	return period, nil
}
