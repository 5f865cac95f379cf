package leave

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"go-sge/internal/events"
	leaveerrors "go-sge/internal/leave/errors"
	"go-sge/internal/messaging/kafka"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/dateutil"
	"go-sge/internal/shared/importer"
	"go-sge/internal/shared/spreadsheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRejectionComment = "Request rejected"

var importColumns = []string{"employeeid", "leavetype", "startdate", "enddate"}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetByStatus(ctx context.Context, status string) ([]LeaveResponse, error)
	GetPending(ctx context.Context) ([]LeaveResponse, error)
	Update(ctx context.Context, actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor, id, comments string) (LeaveResponse, error)
	Reject(ctx context.Context, actor, id, comments string) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, actor string, file io.Reader) ([]LeaveResponse, error)
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
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, now: time.Now, logger: l}
}

func (s *service) Create(ctx context.Context, actor string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave request",
		zap.String("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeID, err := uuid.Parse(strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return LeaveResponse{}, apperror.InvalidField("employee_id")
	}
	if err := ValidateLeaveType(req.LeaveType); err != nil {
		return LeaveResponse{}, err
	}
	start, err := dateutil.ParseDay(req.StartDate)
	if err != nil {
		return LeaveResponse{}, apperror.InvalidField("start_date")
	}
	end, err := dateutil.ParseDay(req.EndDate)
	if err != nil {
		return LeaveResponse{}, apperror.InvalidField("end_date")
	}
	if err := ValidateLeaveDates(start, end, s.now()); err != nil {
		s.logger.Warn("create leave request rejected", zap.String("employee_id", employeeID.String()), zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, employeeID.String())
	if err != nil {
		return LeaveResponse{}, err
	}
	if !exists {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	overlap, err := qtx.HasOverlappingRequest(ctx, employeeID.String(), start, end)
	if err != nil {
		s.logger.Error("create leave request overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave request overlaps",
			zap.String("employee_id", employeeID.String()),
			zap.String("start_date", dateutil.FormatDay(start)),
			zap.String("end_date", dateutil.FormatDay(end)),
		)
		return LeaveResponse{}, leaveerrors.ConflictingPeriod(dateutil.FormatDay(start), dateutil.FormatDay(end))
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		LeaveType:     req.LeaveType,
		StartDate:     start,
		EndDate:       end,
		DaysRequested: DaysRequested(start, end),
		Reason:        strings.TrimSpace(req.Reason),
		Status:        StatusPending,
		CreatedBy:     actor,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request created",
		zap.String("leave_request_id", l.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.Int("days_requested", l.DaysRequested),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveRequestID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*l), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, apperror.InvalidField("employee_id")
	}
	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByStatus(ctx context.Context, status string) ([]LeaveResponse, error) {
	status, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetPending(ctx context.Context) ([]LeaveResponse, error) {
	return s.GetByStatus(ctx, StatusPending)
}

func (s *service) Update(ctx context.Context, actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveRequestID
	}

	var status string
	if req.Status != nil {
		var err error
		if status, err = parseStatus(*req.Status); err != nil {
			return LeaveResponse{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if status != "" && status != l.Status {
		s.logger.Warn("leave status changed outside review",
			zap.String("leave_request_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", status),
			zap.String("actor", actor),
		)
		l.Status = status
	}
	if req.ManagerComments != nil {
		l.ManagerComments = strings.TrimSpace(*req.ManagerComments)
	}
	l.UpdatedBy = actor

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave request persist failed", zap.String("leave_request_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, actor, id, comments string) (LeaveResponse, error) {
	return s.review(ctx, actor, id, StatusApproved, strings.TrimSpace(comments))
}

func (s *service) Reject(ctx context.Context, actor, id, comments string) (LeaveResponse, error) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		comments = defaultRejectionComment
	}
	return s.review(ctx, actor, id, StatusRejected, comments)
}

func (s *service) review(ctx context.Context, actor, id, target, comments string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveRequestID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review leave request begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := checkReview(l.Status, target); err != nil {
		s.logger.Warn("review leave request refused",
			zap.String("leave_request_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", target),
		)
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	l.Status = target
	l.ReviewedBy = actor
	l.ReviewedAt = &now
	l.ManagerComments = comments
	l.UpdatedBy = actor

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("review leave request persist failed", zap.String("leave_request_id", id), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(contextutil.GetRequestID(ctx), "leave_request", l.ID.String(),
			events.LeaveRequestReviewedType, events.LeaveLifecycleTopic,
			events.LeaveRequestReviewedEvent{
				EventType:       events.LeaveRequestReviewedType,
				LeaveRequestID:  l.ID.String(),
				EmployeeID:      l.EmployeeID.String(),
				Status:          l.Status,
				ManagerComments: l.ManagerComments,
				Actor:           actor,
				OccurredAt:      now,
			})
		if err != nil {
			return LeaveResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("review leave request outbox persist failed", zap.String("leave_request_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review leave request commit failed", zap.String("leave_request_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request reviewed",
		zap.String("leave_request_id", id),
		zap.String("status", target),
		zap.String("reviewer", actor),
	)
	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveRequestID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.logger.Info("leave request deleted", zap.String("leave_request_id", id))
	return nil
}

func (s *service) Import(ctx context.Context, actor string, file io.Reader) ([]LeaveResponse, error) {
	rows, err := importer.ReadSheet(file, importColumns...)
	if err != nil {
		return nil, err
	}

	var created []LeaveResponse
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

	s.logger.Info("leave request import finished",
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

	headers := []string{"Id", "Employee Id", "Employee", "Leave Type", "Start Date", "End Date",
		"Days Requested", "Status", "Reason", "Manager Comments", "Reviewed By"}
	records := make([][]any, len(rows))
	for i, l := range rows {
		r := mapToResponse(l)
		records[i] = []any{r.ID, r.EmployeeID, r.EmployeeName, r.LeaveType, r.StartDate, r.EndDate,
			r.DaysRequested, r.Status, r.Reason, r.ManagerComments, r.ReviewedBy}
	}
	return spreadsheet.Write(w, "LeaveRequests", headers, records)
}

func requestFromRow(row spreadsheet.Row) (CreateLeaveRequest, error) {
	var errs importer.RowErrors

	req := CreateLeaveRequest{
		EmployeeID: row.Get("employeeid"),
		StartDate:  row.Get("startdate"),
		EndDate:    row.Get("enddate"),
		Reason:     row.Get("reason"),
	}

	if _, err := uuid.Parse(req.EmployeeID); err != nil {
		errs.Add("invalid employee id: '" + req.EmployeeID + "'")
	}
	if t, err := parseLeaveType(row.Get("leavetype")); err != nil {
		errs.Add("invalid leave type: '" + row.Get("leavetype") + "'")
	} else {
		req.LeaveType = t
	}
	if _, err := dateutil.ParseDate(req.StartDate); err != nil {
		errs.Add("invalid start date: '" + req.StartDate + "'")
	}
	if _, err := dateutil.ParseDate(req.EndDate); err != nil {
		errs.Add("invalid end date: '" + req.EndDate + "'")
	}

	return req, errs.Err()
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       dateutil.FormatDay(l.StartDate),
		EndDate:         dateutil.FormatDay(l.EndDate),
		DaysRequested:   l.DaysRequested,
		Reason:          l.Reason,
		Status:          l.Status,
		ManagerComments: l.ManagerComments,
		ReviewedBy:      l.ReviewedBy,
		CreatedBy:       l.CreatedBy,
		UpdatedBy:       l.UpdatedBy,
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName()
	}
	if l.ReviewedAt != nil {
		v := l.ReviewedAt.UTC().Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}

func mapToListResponse(rows []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(rows))
	for i, l := range rows {
		resp[i] = mapToResponse(l)
	}
	return resp
}
