package limits

import "time"

// Start returns the instant window w began as observed at t, in t's location.
// The weekly window starts at midnight on Sunday.
func (w Window) Start(t time.Time) time.Time {
	y, m, d := t.Date()
	switch w {
	case Daily:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case Weekly:
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
}

// Starts holds the current start of every window.
type Starts struct {
	Daily   time.Time
	Weekly  time.Time
	Monthly time.Time
}

// StartsAt computes all window starts as observed at now.
func StartsAt(now time.Time) Starts {
	return Starts{
		Daily:   Daily.Start(now),
		Weekly:  Weekly.Start(now),
		Monthly: Monthly.Start(now),
	}
}

func (s Starts) of(w Window) time.Time {
	switch w {
	case Daily:
		return s.Daily
	case Weekly:
		return s.Weekly
	default:
		return s.Monthly
	}
}

// Rollover resets every window whose stored marker precedes its start at now.
// It reports whether anything changed.
func Rollover(p Profile, now time.Time) (Profile, bool) {
	out, rolled := rolloverTo(p, StartsAt(now))
	return out, len(rolled) > 0
}

func rolloverTo(p Profile, starts Starts) (Profile, []Window) {
	var rolled []Window
	for _, w := range Windows {
		start := starts.of(w)
		if p.resetAt(w).Before(start) {
			p.setWindow(w, 0, start)
			rolled = append(rolled, w)
		}
	}
	return p, rolled
}

// Accumulate adds amount to every window. A window that has rolled over is
// seeded with amount instead of reset and then added to.
func Accumulate(p Profile, amount float64, now time.Time) Profile {
	return accumulateTo(p, amount, StartsAt(now))
}

func accumulateTo(p Profile, amount float64, starts Starts) Profile {
	for _, w := range Windows {
		start := starts.of(w)
		if p.resetAt(w).Before(start) {
			p.setWindow(w, amount, start)
			continue
		}
		p.setWindow(w, p.used(w)+amount, p.resetAt(w))
	}
	return p
}

// statusOf renders p for display. Windows without a ceiling, or with a zero
// ceiling, report the default.
func statusOf(p Profile, defaults Defaults) Status {
	var s Status
	for _, w := range Windows {
		limit := defaults.of(w)
		if c := p.ceiling(w); c != nil && *c != 0 {
			limit = *c
		}
		used := p.used(w)
		s.set(w, WindowStatus{
			Limit:       limit,
			Used:        used,
			Remaining:   max(0, limit-used),
			WindowStart: p.resetAt(w),
		})
	}
	return s
}
