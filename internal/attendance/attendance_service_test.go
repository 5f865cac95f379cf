package attendance_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-sge/internal/attendance"
	attendanceerrors "go-sge/internal/attendance/errors"
	attendanceMock "go-sge/internal/attendance/mock"
	"go-sge/internal/employee"
	"go-sge/internal/events"
	"go-sge/internal/messaging/kafka"
	kafkaMock "go-sge/internal/messaging/kafka/mock"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/spreadsheet"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service attendance.Service
	repo    *attendanceMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	repo := attendanceMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	t.Cleanup(func() { db.Close() })

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: attendance.NewService(db, repo, outboxRepo),
		repo:    repo,
		outbox:  outboxRepo,
	}
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int        { return &i }

type attendanceRecordedMatcher struct {
	worked, overtime float64
}

func (m attendanceRecordedMatcher) Matches(x any) bool {
	event, ok := x.(kafka.OutboxEvent)
	if !ok || event.Topic != events.AttendanceLifecycleTopic || event.EventType != events.AttendanceRecordedType {
		return false
	}
	var payload events.AttendanceRecordedEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return false
	}
	return payload.WorkedHours == m.worked && payload.OvertimeHours == m.overtime
}

func (m attendanceRecordedMatcher) String() string {
	return "attendance_recorded event with matching hours"
}

func TestAttendanceService_Create(t *testing.T) {
	ctx := context.Background()
	actor := uuid.NewString()
	employeeID := uuid.NewString()
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	validRequest := func() attendance.CreateAttendanceRequest {
		return attendance.CreateAttendanceRequest{
			EmployeeID:   employeeID,
			Date:         "2024-05-06",
			ClockIn:      strPtr("09:00"),
			ClockOut:     strPtr("19:30"),
			BreakMinutes: intPtr(30),
		}
	}

	t.Run("success computes hours and queues event", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, day).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
				assert.Equal(t, day, a.Date)
				assert.Equal(t, actor, a.CreatedBy)
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, attendanceRecordedMatcher{worked: 10, overtime: 2}).Return(nil)

		resp, err := deps.service.Create(ctx, actor, validRequest())

		require.NoError(t, err)
		assert.Equal(t, 10.0, resp.WorkedHours)
		assert.Equal(t, 2.0, resp.OvertimeHours)
		assert.Equal(t, "09:00", resp.ClockIn)
		assert.Equal(t, "19:30", resp.ClockOut)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("clock out before clock in rejected without touching storage", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validRequest()
		req.ClockOut = strPtr("08:00")

		_, err := deps.service.Create(ctx, actor, req)

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceData)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative break rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validRequest()
		req.BreakMinutes = intPtr(-10)

		_, err := deps.service.Create(ctx, actor, req)

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceData)
	})

	t.Run("malformed clock", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validRequest()
		req.ClockIn = strPtr("nine")

		_, err := deps.service.Create(ctx, actor, req)

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceData)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(false, nil)

		_, err := deps.service.Create(ctx, actor, validRequest())

		assert.ErrorIs(t, err, attendanceerrors.ErrEmployeeNotFound)
	})

	t.Run("duplicate day", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, day).Return(&attendance.Attendance{ID: uuid.New()}, nil)

		_, err := deps.service.Create(ctx, actor, validRequest())

		assert.ErrorIs(t, err, attendanceerrors.ErrDuplicateAttendance)
	})

	t.Run("unique violation from concurrent insert", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, day).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_attendances_employee_date"})

		_, err := deps.service.Create(ctx, actor, validRequest())

		assert.ErrorIs(t, err, attendanceerrors.ErrDuplicateAttendance)
	})
}

func TestAttendanceService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	in := day.Add(9 * time.Hour)

	stored := func() *attendance.Attendance {
		return &attendance.Attendance{
			ID:          uuid.MustParse(id),
			EmployeeID:  uuid.New(),
			Date:        day,
			ClockIn:     &in,
			WorkedHours: 3,
			Employee:    &employee.Employee{FirstName: "Ada", LastName: "Lovelace"},
		}
	}

	t.Run("patch clock out recomputes hours", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(stored(), nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, "editor", id, attendance.UpdateAttendanceRequest{
			ClockOut:     strPtr("18:00"),
			BreakMinutes: intPtr(60),
		})

		require.NoError(t, err)
		assert.Equal(t, 8.0, resp.WorkedHours)
		assert.Equal(t, "editor", resp.UpdatedBy)
		assert.Equal(t, "Ada Lovelace", resp.EmployeeName)
	})

	t.Run("notes only keeps prior hours", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(stored(), nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, "editor", id, attendance.UpdateAttendanceRequest{Notes: strPtr(" remote ")})

		require.NoError(t, err)
		assert.Equal(t, 3.0, resp.WorkedHours)
		assert.Equal(t, "remote", resp.Notes)
	})

	t.Run("revalidates merged times", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(stored(), nil)

		_, err := deps.service.Update(ctx, "editor", id, attendance.UpdateAttendanceRequest{ClockOut: strPtr("08:30")})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceData)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, "editor", id, attendance.UpdateAttendanceRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAttendanceNotFound)
	})
}

func TestAttendanceService_ClockIn(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.NewString()

	t.Run("creates today's record", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
				require.NotNil(t, a.ClockIn)
				assert.Nil(t, a.ClockOut)
				assert.Equal(t, a.Date, time.Date(a.ClockIn.Year(), a.ClockIn.Month(), a.ClockIn.Day(), 0, 0, 0, 0, time.UTC))
				return nil
			})

		resp, err := deps.service.ClockIn(ctx, "user", employeeID, attendance.ClockInRequest{})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ClockIn)
	})

	t.Run("already clocked in", func(t *testing.T) {
		deps := setupServiceTest(t)
		now := time.Now().UTC()
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).
			Return(&attendance.Attendance{ID: uuid.New(), ClockIn: &now}, nil)

		_, err := deps.service.ClockIn(ctx, "user", employeeID, attendance.ClockInRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedIn)
	})

	t.Run("record with clock-out only rejects a later clock-in", func(t *testing.T) {
		deps := setupServiceTest(t)
		out := time.Now().UTC().Add(-time.Hour)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).
			Return(&attendance.Attendance{ID: uuid.New(), ClockOut: &out}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.ClockIn(ctx, "user", employeeID, attendance.ClockInRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceData)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("record with clock-out only computes hours", func(t *testing.T) {
		deps := setupServiceTest(t)
		out := time.Now().UTC().Add(3 * time.Hour)
		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().EmployeeExists(ctx, employeeID).Return(true, nil)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).
			Return(&attendance.Attendance{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), ClockOut: &out, BreakMinutes: intPtr(60)}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
				require.NotNil(t, a.ClockIn)
				assert.True(t, a.ClockOut.After(*a.ClockIn))
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.ClockIn(ctx, "user", employeeID, attendance.ClockInRequest{})

		require.NoError(t, err)
		assert.InDelta(t, 2.0, resp.WorkedHours, 0.01)
		assert.Equal(t, 0.0, resp.OvertimeHours)
	})

	t.Run("invalid employee id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.ClockIn(ctx, "user", "nope", attendance.ClockInRequest{})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		fields, _ := apperror.ValidationDetails(appErr)
		assert.Contains(t, fields, "employee_id")
	})
}

func TestAttendanceService_ClockOut(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.NewString()

	t.Run("computes hours and queues event", func(t *testing.T) {
		deps := setupServiceTest(t)
		in := time.Now().UTC().Add(-9 * time.Hour)
		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).
			Return(&attendance.Attendance{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), ClockIn: &in}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.ClockOut(ctx, "user", employeeID, attendance.ClockOutRequest{BreakMinutes: intPtr(60)})

		require.NoError(t, err)
		assert.InDelta(t, 8.0, resp.WorkedHours, 0.01)
		assert.Equal(t, 0.0, resp.OvertimeHours)
	})

	t.Run("event timestamp follows the service clock", func(t *testing.T) {
		deps := setupServiceTest(t)
		fixed := time.Date(2024, 5, 6, 17, 0, 0, 0, time.UTC)
		attendance.SetNow(deps.service, func() time.Time { return fixed })
		in := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
		expectTx(deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)).
			Return(&attendance.Attendance{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID), ClockIn: &in}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, event kafka.OutboxEvent) error {
				var payload events.AttendanceRecordedEvent
				require.NoError(t, json.Unmarshal(event.Payload, &payload))
				assert.True(t, fixed.Equal(payload.OccurredAt))
				return nil
			})

		resp, err := deps.service.ClockOut(ctx, "user", employeeID, attendance.ClockOutRequest{})

		require.NoError(t, err)
		assert.Equal(t, 9.0, resp.WorkedHours)
		assert.Equal(t, 1.0, resp.OvertimeHours)
	})

	t.Run("no record today", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.ClockOut(ctx, "user", employeeID, attendance.ClockOutRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrNotClockedIn)
	})

	t.Run("already clocked out", func(t *testing.T) {
		deps := setupServiceTest(t)
		in := time.Now().UTC().Add(-2 * time.Hour)
		out := in.Add(time.Hour)
		expectTx(deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).
			Return(&attendance.Attendance{ID: uuid.New(), ClockIn: &in, ClockOut: &out}, nil)

		_, err := deps.service.ClockOut(ctx, "user", employeeID, attendance.ClockOutRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedOut)
	})
}

func TestAttendanceService_Finders(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.NewString()

	t.Run("by employee and date", func(t *testing.T) {
		deps := setupServiceTest(t)
		day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, day).
			Return(&attendance.Attendance{ID: uuid.New(), Date: day}, nil)

		resp, err := deps.service.GetByEmployeeAndDate(ctx, employeeID, "06/05/2024")

		require.NoError(t, err)
		assert.Equal(t, "2024-05-06", resp.Date)
	})

	t.Run("by employee and date missing", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByEmployeeAndDate(ctx, employeeID, "2024-05-06")

		assert.ErrorIs(t, err, attendanceerrors.ErrAttendanceNotFound)
	})

	t.Run("range is inclusive", func(t *testing.T) {
		deps := setupServiceTest(t)
		start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
		deps.repo.EXPECT().FindByDateRange(ctx, start, end).Return([]attendance.Attendance{{ID: uuid.New()}}, nil)

		resp, err := deps.service.GetByDateRange(ctx, "2024-05-01", "2024-05-31")

		require.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("range reversed", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByDateRange(ctx, "2024-05-31", "2024-05-01")

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)
	})

	t.Run("by id invalid", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "x")

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidAttendanceID)
	})
}

func TestAttendanceService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	deps := setupServiceTest(t)
	deps.repo.EXPECT().Delete(ctx, id).Return(gorm.ErrRecordNotFound)

	assert.ErrorIs(t, deps.service.Delete(ctx, id), attendanceerrors.ErrAttendanceNotFound)
}

func TestAttendanceService_Import(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.NewString()

	t.Run("missing required columns", func(t *testing.T) {
		deps := setupServiceTest(t)
		var file bytes.Buffer
		require.NoError(t, spreadsheet.Write(&file, "Attendances",
			[]string{"Employee Id", "Clock In"},
			[][]any{{employeeID, "09:00"}},
		))

		_, err := deps.service.Import(ctx, "admin", &file)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		fields, _ := apperror.ValidationDetails(appErr)
		require.Contains(t, fields, "general")
		assert.Contains(t, fields["general"][0], "date")
	})

	t.Run("accepts break as clock or minutes", func(t *testing.T) {
		deps := setupServiceTest(t)
		var file bytes.Buffer
		require.NoError(t, spreadsheet.Write(&file, "Attendances",
			[]string{"EmployeeId", "Date", "ClockIn", "ClockOut", "BreakDuration", "Notes"},
			[][]any{
				{employeeID, "2024-05-06", "09:00", "18:00", "01:00", ""},
				{employeeID, "2024-05-07", "09:00", "17:30", "30", "early"},
				{"bad", "someday", "9h", "", "-", ""},
			},
		))

		var saved []*attendance.Attendance
		for i := 0; i < 2; i++ {
			expectTx(deps.sqlMock, true)
		}
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo).Times(2)
		deps.repo.EXPECT().EmployeeExists(gomock.Any(), employeeID).Return(true, nil).Times(2)
		deps.repo.EXPECT().FindByEmployeeAndDate(gomock.Any(), employeeID, gomock.Any()).Return(nil, gorm.ErrRecordNotFound).Times(2)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
				saved = append(saved, a)
				return nil
			}).Times(2)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox).Times(2)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		created, err := deps.service.Import(ctx, "admin", &file)

		assert.Len(t, created, 2)
		require.Len(t, saved, 2)
		assert.Equal(t, 60, *saved[0].BreakMinutes)
		assert.Equal(t, 8.0, saved[0].WorkedHours)
		assert.Equal(t, 30, *saved[1].BreakMinutes)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		fields, _ := apperror.ValidationDetails(appErr)
		require.Contains(t, fields, "4")
		assert.Len(t, fields["4"], 4)
	})
}

func TestAttendanceService_Export(t *testing.T) {
	deps := setupServiceTest(t)
	in := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	deps.repo.EXPECT().FindAll(gomock.Any()).Return([]attendance.Attendance{
		{ID: uuid.New(), Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), ClockIn: &in, WorkedHours: 7.5,
			Employee: &employee.Employee{FirstName: "Ada", LastName: "Lovelace"}},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, deps.service.Export(context.Background(), &buf))

	rows, err := spreadsheet.Read(&buf)
	require.NoError(t, err)
	require.Len(t, rows.Records, 1)
	assert.Equal(t, "Ada Lovelace", rows.Records[0].Get("employee"))
	assert.Equal(t, "09:00", rows.Records[0].Get("clockin"))
	assert.Equal(t, "2024-05-06", rows.Records[0].Get("date"))
}
