package attendance

import (
	"math"
	"time"
)

// StandardWorkday is the daily hours threshold above which time counts as overtime.
const StandardWorkday = 8 * time.Hour

type Hours struct {
	Worked   float64
	Overtime float64
}

// CalculateHours derives worked and overtime hours, rounded to two decimals.
// When either clock time is missing the prior values are returned unchanged.
func CalculateHours(clockIn, clockOut *time.Time, breakDuration *time.Duration, prior Hours) Hours {
	if clockIn == nil || clockOut == nil {
		return prior
	}

	worked := clockOut.Sub(*clockIn)
	if breakDuration != nil {
		worked -= *breakDuration
	}
	if worked < 0 {
		worked = 0
	}

	overtime := worked - StandardWorkday
	if overtime < 0 {
		overtime = 0
	}

	return Hours{Worked: round2(worked.Hours()), Overtime: round2(overtime.Hours())}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
