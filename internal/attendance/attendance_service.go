package attendance

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	attendanceerrors "go-sge/internal/attendance/errors"
	"go-sge/internal/events"
	"go-sge/internal/messaging/kafka"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/dateutil"
	"go-sge/internal/shared/importer"
	"go-sge/internal/shared/spreadsheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var importColumns = []string{"employeeid", "date"}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor string, req CreateAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context) ([]AttendanceResponse, error)
	GetByID(ctx context.Context, id string) (AttendanceResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]AttendanceResponse, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (AttendanceResponse, error)
	GetByDateRange(ctx context.Context, start, end string) ([]AttendanceResponse, error)
	Update(ctx context.Context, actor, id string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
	ClockIn(ctx context.Context, actor, employeeID string, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, actor, employeeID string, req ClockOutRequest) (AttendanceResponse, error)
	Import(ctx context.Context, actor string, file io.Reader) ([]AttendanceResponse, error)
	Export(ctx context.Context, w io.Writer) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, now: time.Now, logger: l}
}

func (s *service) Create(ctx context.Context, actor string, req CreateAttendanceRequest) (AttendanceResponse, error) {
	employeeID, err := uuid.Parse(strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return AttendanceResponse{}, apperror.InvalidField("employee_id")
	}
	day, err := dateutil.ParseDay(req.Date)
	if err != nil {
		return AttendanceResponse{}, apperror.InvalidField("date")
	}
	clockIn, err := clockOn(day, req.ClockIn)
	if err != nil {
		return AttendanceResponse{}, invalidData("clock-in must use HH:MM")
	}
	clockOut, err := clockOn(day, req.ClockOut)
	if err != nil {
		return AttendanceResponse{}, invalidData("clock-out must use HH:MM")
	}
	brk := minutes(req.BreakMinutes)

	if err := ValidateAttendanceTimes(clockIn, clockOut, brk); err != nil {
		s.logger.Warn("create attendance rejected", zap.String("employee_id", employeeID.String()), zap.Error(err))
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.ensureEmployee(ctx, qtx, employeeID.String()); err != nil {
		return AttendanceResponse{}, err
	}

	if _, err := qtx.FindByEmployeeAndDate(ctx, employeeID.String(), day); err == nil {
		s.logger.Warn("duplicate attendance",
			zap.String("employee_id", employeeID.String()),
			zap.String("date", dateutil.FormatDay(day)),
		)
		return AttendanceResponse{}, attendanceerrors.ErrDuplicateAttendance
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}

	h := CalculateHours(clockIn, clockOut, brk, Hours{})
	row := &Attendance{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		Date:          day,
		ClockIn:       clockIn,
		ClockOut:      clockOut,
		BreakMinutes:  req.BreakMinutes,
		WorkedHours:   h.Worked,
		OvertimeHours: h.Overtime,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedBy:     actor,
	}

	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("create attendance persist failed", zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueRecorded(ctx, tx, row, actor); err != nil {
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance created",
		zap.String("attendance_id", row.ID.String()),
		zap.Float64("worked_hours", row.WorkedHours),
		zap.Float64("overtime_hours", row.OvertimeHours),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all attendances failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*row), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, apperror.InvalidField("employee_id")
	}
	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, apperror.InvalidField("employee_id")
	}
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return AttendanceResponse{}, apperror.InvalidField("date")
	}
	row, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*row), nil
}

func (s *service) GetByDateRange(ctx context.Context, start, end string) ([]AttendanceResponse, error) {
	from, err := dateutil.ParseDay(start)
	if err != nil {
		return nil, apperror.InvalidField("start_date")
	}
	to, err := dateutil.ParseDay(end)
	if err != nil {
		return nil, apperror.InvalidField("end_date")
	}
	if to.Before(from) {
		return nil, attendanceerrors.ErrInvalidDateRange
	}

	rows, err := s.repo.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) Update(ctx context.Context, actor, id string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByID(ctx, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if req.ClockIn != nil {
		if row.ClockIn, err = clockOn(row.Date, req.ClockIn); err != nil {
			return AttendanceResponse{}, invalidData("clock-in must use HH:MM")
		}
	}
	if req.ClockOut != nil {
		if row.ClockOut, err = clockOn(row.Date, req.ClockOut); err != nil {
			return AttendanceResponse{}, invalidData("clock-out must use HH:MM")
		}
	}
	if req.BreakMinutes != nil {
		row.BreakMinutes = req.BreakMinutes
	}
	if req.Notes != nil {
		row.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := ValidateAttendanceTimes(row.ClockIn, row.ClockOut, row.breakDuration()); err != nil {
		s.logger.Warn("update attendance rejected", zap.String("attendance_id", id), zap.Error(err))
		return AttendanceResponse{}, err
	}

	h := CalculateHours(row.ClockIn, row.ClockOut, row.breakDuration(), row.hours())
	row.WorkedHours = h.Worked
	row.OvertimeHours = h.Overtime
	row.UpdatedBy = actor

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("update attendance persist failed", zap.String("attendance_id", id), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendanceerrors.ErrInvalidAttendanceID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.logger.Info("attendance deleted", zap.String("attendance_id", id))
	return nil
}

func (s *service) ClockIn(ctx context.Context, actor, employeeID string, req ClockInRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, apperror.InvalidField("employee_id")
	}

	now := s.now().UTC().Truncate(time.Second)
	today := dateutil.StartOfDay(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.ensureEmployee(ctx, qtx, employeeID); err != nil {
		return AttendanceResponse{}, err
	}

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	switch {
	case err == nil && row.ClockIn != nil:
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
	case err == nil:
		row.ClockIn = &now
		if err := ValidateAttendanceTimes(row.ClockIn, row.ClockOut, row.breakDuration()); err != nil {
			return AttendanceResponse{}, err
		}
		h := CalculateHours(row.ClockIn, row.ClockOut, row.breakDuration(), row.hours())
		row.WorkedHours = h.Worked
		row.OvertimeHours = h.Overtime
		row.UpdatedBy = actor
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			row.Notes = notes
		}
		if err = qtx.Update(ctx, row); err == nil && row.ClockOut != nil {
			err = s.enqueueRecorded(ctx, tx, row, actor)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &Attendance{
			ID:         uuid.New(),
			EmployeeID: uuid.MustParse(employeeID),
			Date:       today,
			ClockIn:    &now,
			Notes:      strings.TrimSpace(req.Notes),
			CreatedBy:  actor,
		}
		err = qtx.Create(ctx, row)
	}
	if err != nil {
		s.logger.Error("clock in persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("employee clocked in", zap.String("employee_id", employeeID), zap.Time("at", now))
	return mapToResponse(*row), nil
}

func (s *service) ClockOut(ctx context.Context, actor, employeeID string, req ClockOutRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, apperror.InvalidField("employee_id")
	}

	now := s.now().UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, dateutil.StartOfDay(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
		}
		return AttendanceResponse{}, err
	}
	if row.ClockIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
	}
	if row.ClockOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedOut
	}

	row.ClockOut = &now
	if req.BreakMinutes != nil {
		row.BreakMinutes = req.BreakMinutes
	}
	if req.Notes != nil {
		row.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := ValidateAttendanceTimes(row.ClockIn, row.ClockOut, row.breakDuration()); err != nil {
		return AttendanceResponse{}, err
	}

	h := CalculateHours(row.ClockIn, row.ClockOut, row.breakDuration(), row.hours())
	row.WorkedHours = h.Worked
	row.OvertimeHours = h.Overtime
	row.UpdatedBy = actor

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("clock out persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueueRecorded(ctx, tx, row, actor); err != nil {
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("employee clocked out",
		zap.String("employee_id", employeeID),
		zap.Float64("worked_hours", row.WorkedHours),
	)
	return mapToResponse(*row), nil
}

func (s *service) Import(ctx context.Context, actor string, file io.Reader) ([]AttendanceResponse, error) {
	rows, err := importer.ReadSheet(file, importColumns...)
	if err != nil {
		return nil, err
	}

	var created []AttendanceResponse
	n, err := importer.Reconcile(ctx, rows.Records, func(ctx context.Context, _ int, row spreadsheet.Row) error {
		req, rowErr := requestFromRow(row)
		if rowErr != nil {
			return rowErr
		}
		resp, err := s.Create(ctx, actor, req)
		if err != nil {
			return err
		}
		created = append(created, resp)
		return nil
	})

	s.logger.Info("attendance import finished",
		zap.Int("rows", len(rows.Records)),
		zap.Int("imported", n),
		zap.Bool("partial", err != nil),
	)
	return created, err
}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return mapRepositoryError(err)
	}

	headers := []string{"Id", "Employee Id", "Employee", "Date", "Clock In", "Clock Out",
		"Break Minutes", "Worked Hours", "Overtime Hours", "Notes"}
	records := make([][]any, len(rows))
	for i, a := range rows {
		r := mapToResponse(a)
		brk := ""
		if a.BreakMinutes != nil {
			brk = strconv.Itoa(*a.BreakMinutes)
		}
		records[i] = []any{r.ID, r.EmployeeID, r.EmployeeName, r.Date, r.ClockIn, r.ClockOut,
			brk, r.WorkedHours, r.OvertimeHours, r.Notes}
	}
	return spreadsheet.Write(w, "Attendances", headers, records)
}

func (s *service) ensureEmployee(ctx context.Context, repo Repository, employeeID string) error {
	ok, err := repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return attendanceerrors.ErrEmployeeNotFound
	}
	return nil
}

func (s *service) enqueueRecorded(ctx context.Context, tx *sql.Tx, row *Attendance, actor string) error {
	if s.outbox == nil {
		return nil
	}
	event, err := kafka.NewOutboxEvent(contextutil.GetRequestID(ctx), "attendance", row.ID.String(),
		events.AttendanceRecordedType, events.AttendanceLifecycleTopic,
		events.AttendanceRecordedEvent{
			EventType:     events.AttendanceRecordedType,
			AttendanceID:  row.ID.String(),
			EmployeeID:    row.EmployeeID.String(),
			Date:          dateutil.FormatDay(row.Date),
			WorkedHours:   row.WorkedHours,
			OvertimeHours: row.OvertimeHours,
			Actor:         actor,
			OccurredAt:    s.now().UTC(),
		})
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("attendance outbox persist failed", zap.String("attendance_id", row.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// clockOn places an "HH:MM" value on day. Nil or blank input means no time.
func clockOn(day time.Time, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	clock, err := dateutil.ParseClock(*value)
	if err != nil {
		return nil, err
	}
	t := dateutil.At(day, clock)
	return &t, nil
}

func minutes(m *int) *time.Duration {
	if m == nil {
		return nil
	}
	d := time.Duration(*m) * time.Minute
	return &d
}

// parseBreak accepts "HH:MM" or a plain number of minutes.
func parseBreak(value string) (int, error) {
	if d, err := dateutil.ParseClock(value); err == nil {
		return int(d.Minutes()), nil
	}
	return strconv.Atoi(strings.TrimSpace(value))
}

func requestFromRow(row spreadsheet.Row) (CreateAttendanceRequest, error) {
	var errs importer.RowErrors

	req := CreateAttendanceRequest{
		EmployeeID: row.Get("employeeid"),
		Date:       row.Get("date"),
		Notes:      row.Get("notes"),
	}

	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		errs.Add("invalid employee id: '" + req.EmployeeID + "'")
	}
	if _, err := dateutil.ParseDate(req.Date); err != nil {
		errs.Add("invalid date: '" + req.Date + "'")
	}
	for _, col := range []struct {
		name   string
		target **string
	}{{"clockin", &req.ClockIn}, {"clockout", &req.ClockOut}} {
		v := row.Get(col.name)
		if v == "" {
			continue
		}
		if _, err := dateutil.ParseClock(v); err != nil {
			errs.Add("invalid " + col.name + ": '" + v + "'")
			continue
		}
		*col.target = &v
	}
	if v := row.Get("breakduration"); v != "" {
		m, err := parseBreak(v)
		if err != nil {
			errs.Add("invalid breakduration: '" + v + "'")
		} else {
			req.BreakMinutes = &m
		}
	}

	return req, errs.Err()
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:            a.ID.String(),
		EmployeeID:    a.EmployeeID.String(),
		Date:          dateutil.FormatDay(a.Date),
		ClockIn:       dateutil.FormatClock(a.ClockIn),
		ClockOut:      dateutil.FormatClock(a.ClockOut),
		BreakMinutes:  a.BreakMinutes,
		WorkedHours:   a.WorkedHours,
		OvertimeHours: a.OvertimeHours,
		Notes:         a.Notes,
		CreatedBy:     a.CreatedBy,
		UpdatedBy:     a.UpdatedBy,
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName()
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}
