package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeUnit is the unit of a polling rate
type TimeUnit string

const (
	UnitMinute  TimeUnit = "minute"
	UnitMinutes TimeUnit = "minutes"
	UnitHour    TimeUnit = "hour"
	UnitHours   TimeUnit = "hours"
)

// DefaultRate is applied to users that have no schedule yet
var DefaultRate = Rate{Amount: 1, Unit: UnitHour}

// MaxInterval is the longest polling rate a user can set
const MaxInterval = 30 * 24 * time.Hour

// ParseTimeUnit accepts the unit suffix of /set_polling_rate_in_<unit>
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch u := TimeUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitMinute, UnitMinutes, UnitHour, UnitHours:
		return u.Plural(), nil
	default:
		return "", fmt.Errorf("unsupported time unit %q", s)
	}
}

// Plural returns the plural form of the unit
func (u TimeUnit) Plural() TimeUnit {
	if strings.HasSuffix(string(u), "s") {
		return u
	}
	return u + "s"
}

// Singular returns the singular form of the unit
func (u TimeUnit) Singular() TimeUnit {
	return TimeUnit(strings.TrimSuffix(string(u), "s"))
}

// Rate is how often a user is polled
type Rate struct {
	Amount int
	Unit   TimeUnit
}

// NewRate builds a rate from the user-typed amount, singularizing the unit for 1
func NewRate(amount string, unit TimeUnit) (Rate, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || strings.TrimLeft(amount, "0123456789") != "" {
		return Rate{}, fmt.Errorf("amount %q is not a number", amount)
	}
	n, err := strconv.Atoi(amount)
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("amount %q is not a positive number", amount)
	}
	if limit := int(MaxInterval / unit.Duration()); n > limit {
		return Rate{}, fmt.Errorf("amount %d exceeds %d %s", n, limit, unit.Plural())
	}
	if n == 1 {
		unit = unit.Singular()
	} else {
		unit = unit.Plural()
	}
	return Rate{Amount: n, Unit: unit}, nil
}

// Duration returns the length of one unit
func (u TimeUnit) Duration() time.Duration {
	if u.Plural() == UnitHours {
		return time.Hour
	}
	return time.Minute
}

// Interval returns the rate as a duration
func (r Rate) Interval() time.Duration {
	return time.Duration(r.Amount) * r.Unit.Duration()
}

// String formats the rate as "5 minutes"
func (r Rate) String() string {
	return fmt.Sprintf("%d %s", r.Amount, r.Unit)
}

// Schedule is the persisted polling rate of a user
type Schedule struct {
	UserID int64
	Rate   Rate
}

// QuietHours is a daily window in which users are not polled
type QuietHours struct {
	Start    int
	End      int
	Location *time.Location
}

// Contains reports whether t falls inside the window.
// A window with Start > End wraps around midnight.
func (q QuietHours) Contains(t time.Time) bool {
	if q.Start == q.End {
		return false
	}
	if q.Location != nil {
		t = t.In(q.Location)
	}
	h := t.Hour()
	if q.Start < q.End {
		return h >= q.Start && h < q.End
	}
	return h >= q.Start || h < q.End
}
