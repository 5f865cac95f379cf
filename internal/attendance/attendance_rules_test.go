package attendance_test

import (
	"testing"
	"time"

	"go-sge/internal/attendance"
	attendanceerrors "go-sge/internal/attendance/errors"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) *time.Time {
	t := time.Date(2024, 5, 6, hour, minute, 0, 0, time.UTC)
	return &t
}

func brk(minutes int) *time.Duration {
	d := time.Duration(minutes) * time.Minute
	return &d
}

func TestValidateAttendanceTimes(t *testing.T) {
	tests := []struct {
		name     string
		clockIn  *time.Time
		clockOut *time.Time
		breakDur *time.Duration
		wantErr  bool
	}{
		{name: "all absent", wantErr: false},
		{name: "clock in only", clockIn: at(9, 0), wantErr: false},
		{name: "ordered", clockIn: at(9, 0), clockOut: at(17, 0), breakDur: brk(30), wantErr: false},
		{name: "equal times", clockIn: at(9, 0), clockOut: at(9, 0), wantErr: true},
		{name: "out before in", clockIn: at(18, 0), clockOut: at(9, 0), wantErr: true},
		{name: "negative break", clockIn: at(9, 0), clockOut: at(17, 0), breakDur: brk(-5), wantErr: true},
		{name: "zero break", breakDur: brk(0), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := attendance.ValidateAttendanceTimes(tt.clockIn, tt.clockOut, tt.breakDur)
			if tt.wantErr {
				assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceData)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCalculateHours(t *testing.T) {
	prior := attendance.Hours{Worked: 4, Overtime: 0}

	tests := []struct {
		name     string
		clockIn  *time.Time
		clockOut *time.Time
		breakDur *time.Duration
		want     attendance.Hours
	}{
		{name: "standard day", clockIn: at(9, 0), clockOut: at(18, 0), breakDur: brk(60), want: attendance.Hours{Worked: 8}},
		{name: "overtime", clockIn: at(9, 0), clockOut: at(19, 30), breakDur: brk(30), want: attendance.Hours{Worked: 10, Overtime: 2}},
		{name: "no break", clockIn: at(8, 0), clockOut: at(12, 20), want: attendance.Hours{Worked: 4.33}},
		{name: "break longer than shift", clockIn: at(9, 0), clockOut: at(10, 0), breakDur: brk(90), want: attendance.Hours{}},
		{name: "missing clock out keeps prior", clockIn: at(9, 0), want: prior},
		{name: "missing clock in keeps prior", clockOut: at(17, 0), want: prior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attendance.CalculateHours(tt.clockIn, tt.clockOut, tt.breakDur, prior)
			assert.InDelta(t, tt.want.Worked, got.Worked, 0.001)
			assert.InDelta(t, tt.want.Overtime, got.Overtime, 0.001)
		})
	}
}
