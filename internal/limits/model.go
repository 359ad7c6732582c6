package limits

import (
	"time"

	"github.com/google/uuid"
)

// Window identifies one of the three rolling accounting periods.
type Window string

const (
	Daily   Window = "daily"
	Weekly  Window = "weekly"
	Monthly Window = "monthly"
)

// Windows lists every window in display order.
var Windows = []Window{Daily, Weekly, Monthly}

// Profile matches the deposit_limits table schema. A nil ceiling means the
// user never configured one.
type Profile struct {
	UserID         uuid.UUID `json:"user_id"`
	Daily          *float64  `json:"daily"`
	Weekly         *float64  `json:"weekly"`
	Monthly        *float64  `json:"monthly"`
	DailyUsed      float64   `json:"daily_used"`
	WeeklyUsed     float64   `json:"weekly_used"`
	MonthlyUsed    float64   `json:"monthly_used"`
	DailyResetAt   time.Time `json:"daily_reset_at"`
	WeeklyResetAt  time.Time `json:"weekly_reset_at"`
	MonthlyResetAt time.Time `json:"monthly_reset_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Profile) ceiling(w Window) *float64 {
	switch w {
	case Daily:
		return p.Daily
	case Weekly:
		return p.Weekly
	default:
		return p.Monthly
	}
}

func (p *Profile) used(w Window) float64 {
	switch w {
	case Daily:
		return p.DailyUsed
	case Weekly:
		return p.WeeklyUsed
	default:
		return p.MonthlyUsed
	}
}

func (p *Profile) resetAt(w Window) time.Time {
	switch w {
	case Daily:
		return p.DailyResetAt
	case Weekly:
		return p.WeeklyResetAt
	default:
		return p.MonthlyResetAt
	}
}

func (p *Profile) setWindow(w Window, used float64, resetAt time.Time) {
	switch w {
	case Daily:
		p.DailyUsed, p.DailyResetAt = used, resetAt
	case Weekly:
		p.WeeklyUsed, p.WeeklyResetAt = used, resetAt
	default:
		p.MonthlyUsed, p.MonthlyResetAt = used, resetAt
	}
}

// Defaults are the ceilings reported for windows without a configured limit.
type Defaults struct {
	Daily   float64
	Weekly  float64
	Monthly float64
}

func (d Defaults) of(w Window) float64 {
	switch w {
	case Daily:
		return d.Daily
	case Weekly:
		return d.Weekly
	default:
		return d.Monthly
	}
}

// LimitUpdate carries the ceilings to change; nil fields are left untouched.
type LimitUpdate struct {
	Daily   *float64
	Weekly  *float64
	Monthly *float64
}

// WindowStatus is the usage of a single window as shown to the user.
type WindowStatus struct {
	Limit       float64   `json:"limit"`
	Used        float64   `json:"used"`
	Remaining   float64   `json:"remaining"`
	WindowStart time.Time `json:"window_start"`
}

// Status is the API response for a user's deposit limits.
type Status struct {
	Daily   WindowStatus `json:"daily"`
	Weekly  WindowStatus `json:"weekly"`
	Monthly WindowStatus `json:"monthly"`
}

func (s *Status) set(w Window, ws WindowStatus) {
	switch w {
	case Daily:
		s.Daily = ws
	case Weekly:
		s.Weekly = ws
	default:
		s.Monthly = ws
	}
}

// SetLimitsRequest is the body of POST /deposit-limits.
type SetLimitsRequest struct {
	Daily   *float64 `json:"daily" validate:"omitempty,gte=0"`
	Weekly  *float64 `json:"weekly" validate:"omitempty,gte=0"`
	Monthly *float64 `json:"monthly" validate:"omitempty,gte=0"`
}

// RecordBetRequest is the body of POST /record-bet.
type RecordBetRequest struct {
	Amount *float64 `json:"amount" validate:"required,gt=0"`
}
