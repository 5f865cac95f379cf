package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	employeeerrors "go-sge/internal/employee/errors"
	"go-sge/internal/events"
	"go-sge/internal/messaging/kafka"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/dateutil"
	"go-sge/internal/shared/importer"
	"go-sge/internal/shared/spreadsheet"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeOptionsCacheKey = "employees:options"
	employeeOptionsCacheTTL = time.Hour

	uniqueIDAttempts = 10
	uniqueIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var importColumns = []string{"firstname", "lastname", "email", "departmentid", "hiredate", "salary", "gender"}

var validate = validator.New()

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetByEmail(ctx context.Context, email string) (EmployeeResponse, error)
	GetByDepartment(ctx context.Context, departmentID string) ([]EmployeeResponse, error)
	Update(ctx context.Context, actor, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, actor string, file io.Reader) ([]EmployeeResponse, error)
	Export(ctx context.Context, w io.Writer) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// employeeFields is a request after trimming and parsing.
type employeeFields struct {
	FirstName    string
	LastName     string
	Gender       string
	Email        string
	PhoneNumber  string
	Address      string
	Position     string
	Salary       float64
	DepartmentID uuid.UUID
	HireDate     time.Time
}

func (s *service) Create(ctx context.Context, actor string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("department_id", req.DepartmentID),
		zap.String("email", req.Email),
	)

	in, fields := normalize(req)
	if len(fields) > 0 {
		s.logger.Warn("create employee validation failed", zap.String("request_id", rid), zap.Any("fields", fields))
		return EmployeeResponse{}, apperror.NewValidation(fields)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	deptCode, err := qtx.GetDepartmentCode(ctx, in.DepartmentID.String())
	if err != nil {
		s.logger.Error("create employee get department failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if deptCode == "" {
		s.logger.Warn("create employee department not found", zap.String("department_id", in.DepartmentID.String()))
		return EmployeeResponse{}, employeeerrors.ErrDepartmentNotFound
	}

	exists, err := qtx.ExistsByEmail(ctx, in.Email, "")
	if err != nil {
		return EmployeeResponse{}, err
	}
	if exists {
		s.logger.Warn("create employee email already used", zap.String("email", in.Email))
		return EmployeeResponse{}, employeeerrors.ErrEmployeeEmailAlreadyExists
	}

	uniqueID, err := s.generateUniqueID(ctx, qtx, in.FirstName, in.LastName, deptCode)
	if err != nil {
		s.logger.Warn("create employee unique id generation failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	empl := &Employee{
		ID:           uuid.New(),
		UniqueID:     uniqueID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Gender:       in.Gender,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		Position:     in.Position,
		Salary:       in.Salary,
		DepartmentID: in.DepartmentID,
		HireDate:     in.HireDate,
		CreatedBy:    actor,
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(rid, "employee", empl.ID.String(),
			events.EmployeeCreatedType, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:    events.EmployeeCreatedType,
				EmployeeID:   empl.ID.String(),
				UniqueID:     empl.UniqueID,
				DepartmentID: empl.DepartmentID.String(),
				Email:        empl.Email,
				Actor:        actor,
				OccurredAt:   time.Now().UTC(),
			})
		if err != nil {
			return EmployeeResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("unique_id", empl.UniqueID),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsCacheKey).Result(); err == nil {
			var resp []EmployeeOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Concurrent misses share one query.
	v, err, _ := s.sf.Do(EmployeeOptionsCacheKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOptionResponse{ID: e.ID.String(), UniqueID: e.UniqueID, FullName: e.FullName()}
		}

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, EmployeeOptionsCacheKey, data, employeeOptionsCacheTTL).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]EmployeeOptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (EmployeeResponse, error) {
	email = strings.TrimSpace(email)
	if validate.Var(email, "required,email") != nil {
		return EmployeeResponse{}, apperror.InvalidField("email")
	}

	empl, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) GetByDepartment(ctx context.Context, departmentID string) ([]EmployeeResponse, error) {
	if _, err := uuid.Parse(departmentID); err != nil {
		return nil, apperror.InvalidField("department_id")
	}

	empls, err := s.repo.FindByDepartment(ctx, departmentID)
	if err != nil {
		s.logger.Error("get employees by department failed", zap.String("department_id", departmentID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(empls), nil
}

func (s *service) Update(ctx context.Context, actor, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	in, fields := normalize(CreateEmployeeRequest(req))
	if len(fields) > 0 {
		s.logger.Warn("update employee validation failed", zap.String("employee_id", id), zap.Any("fields", fields))
		return EmployeeResponse{}, apperror.NewValidation(fields)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if empl.DepartmentID != in.DepartmentID {
		code, err := qtx.GetDepartmentCode(ctx, in.DepartmentID.String())
		if err != nil {
			return EmployeeResponse{}, err
		}
		if code == "" {
			return EmployeeResponse{}, employeeerrors.ErrDepartmentNotFound
		}
		empl.Department = nil
	}

	exists, err := qtx.ExistsByEmail(ctx, in.Email, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if exists {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeEmailAlreadyExists
	}

	empl.FirstName = in.FirstName
	empl.LastName = in.LastName
	empl.Gender = in.Gender
	empl.Email = in.Email
	empl.PhoneNumber = in.PhoneNumber
	empl.Address = in.Address
	empl.Position = in.Position
	empl.Salary = in.Salary
	empl.DepartmentID = in.DepartmentID
	empl.HireDate = in.HireDate
	empl.UpdatedBy = actor

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)
	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		s.logger.Warn("delete employee failed", zap.String("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateOptions(ctx)
	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) Import(ctx context.Context, actor string, file io.Reader) ([]EmployeeResponse, error) {
	rows, err := importer.ReadSheet(file, importColumns...)
	if err != nil {
		return nil, err
	}

	var created []EmployeeResponse
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

	s.logger.Info("employee import finished",
		zap.Int("rows", len(rows.Records)),
		zap.Int("imported", n),
		zap.Bool("partial", err != nil),
	)
	return created, err
}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		return mapRepositoryError(err)
	}

	headers := []string{"Id", "Unique Id", "First Name", "Last Name", "Gender", "Email", "Phone Number",
		"Address", "Position", "Salary", "Department", "Hire Date"}
	records := make([][]any, len(empls))
	for i, e := range empls {
		dept := ""
		if e.Department != nil {
			dept = e.Department.Name
		}
		records[i] = []any{e.ID.String(), e.UniqueID, e.FirstName, e.LastName, e.Gender, e.Email,
			e.PhoneNumber, e.Address, e.Position, e.Salary, dept, dateutil.FormatDay(e.HireDate)}
	}
	return spreadsheet.Write(w, "Employees", headers, records)
}

func (s *service) generateUniqueID(ctx context.Context, repo Repository, first, last, deptCode string) (string, error) {
	for attempt := 0; attempt < uniqueIDAttempts; attempt++ {
		candidate := buildUniqueID(first, last, uniqueIDAlphabet[rand.Intn(len(uniqueIDAlphabet))], deptCode)
		exists, err := repo.ExistsByUniqueID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", employeeerrors.ErrUniqueIDExhausted
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsCacheKey),
		)
	}
}

// buildUniqueID joins the first two letters of each name, one random
// character and the department code.
func buildUniqueID(first, last string, random byte, deptCode string) string {
	return strings.ToUpper(prefix(first, 2) + prefix(last, 2) + string(random) + deptCode)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func normalize(req CreateEmployeeRequest) (employeeFields, map[string][]string) {
	fields := map[string][]string{}
	in := employeeFields{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Gender:      strings.ToUpper(strings.TrimSpace(req.Gender)),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Address:     strings.TrimSpace(req.Address),
		Position:    strings.TrimSpace(req.Position),
		Salary:      req.Salary,
	}

	if in.FirstName == "" {
		fields["first_name"] = append(fields["first_name"], "first name is required")
	}
	if in.LastName == "" {
		fields["last_name"] = append(fields["last_name"], "last name is required")
	}
	if validate.Var(in.Email, "required,email") != nil {
		fields["email"] = append(fields["email"], "email must be a valid email address")
	}
	if !isValidGender(in.Gender) {
		fields["gender"] = append(fields["gender"], "gender must be one of MALE, FEMALE, OTHER")
	}
	if in.Salary < 0 {
		fields["salary"] = append(fields["salary"], "salary must not be negative")
	}
	deptID, err := uuid.Parse(strings.TrimSpace(req.DepartmentID))
	if err != nil {
		fields["department_id"] = append(fields["department_id"], "department id must be a valid identifier")
	}
	in.DepartmentID = deptID
	hireDate, err := dateutil.ParseDay(req.HireDate)
	if err != nil {
		fields["hire_date"] = append(fields["hire_date"], "hire date must be a date (dd/MM/yyyy or yyyy-MM-dd)")
	}
	in.HireDate = hireDate

	return in, fields
}

// requestFromRow checks the raw cell values so every problem on the row is
// reported at once.
func requestFromRow(row spreadsheet.Row) (CreateEmployeeRequest, error) {
	var errs importer.RowErrors

	req := CreateEmployeeRequest{
		FirstName:    row.Get("firstname"),
		LastName:     row.Get("lastname"),
		Gender:       strings.ToUpper(row.Get("gender")),
		Email:        row.Get("email"),
		PhoneNumber:  row.Get("phonenumber"),
		Address:      row.Get("address"),
		Position:     row.Get("position"),
		DepartmentID: row.Get("departmentid"),
		HireDate:     row.Get("hiredate"),
	}

	if req.FirstName == "" {
		errs.Add("first name is required")
	}
	if req.LastName == "" {
		errs.Add("last name is required")
	}
	if req.Email == "" {
		errs.Add("email is required")
	}
	if !isValidGender(req.Gender) {
		errs.Add("invalid gender: '" + row.Get("gender") + "'")
	}
	salary, err := strconv.ParseFloat(row.Get("salary"), 64)
	if err != nil {
		errs.Add("invalid salary: '" + row.Get("salary") + "'")
	}
	req.Salary = salary
	if _, err := uuid.Parse(req.DepartmentID); err != nil {
		errs.Add("invalid department id: '" + req.DepartmentID + "'")
	}
	if _, err := dateutil.ParseDate(req.HireDate); err != nil {
		errs.Add("invalid hire date: '" + req.HireDate + "'. Accepted formats: dd/MM/yyyy, yyyy-MM-dd")
	}

	return req, errs.Err()
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:           empl.ID.String(),
		UniqueID:     empl.UniqueID,
		FirstName:    empl.FirstName,
		LastName:     empl.LastName,
		FullName:     empl.FullName(),
		Gender:       empl.Gender,
		Email:        empl.Email,
		PhoneNumber:  empl.PhoneNumber,
		Address:      empl.Address,
		Position:     empl.Position,
		Salary:       empl.Salary,
		DepartmentID: empl.DepartmentID.String(),
		HireDate:     dateutil.FormatDay(empl.HireDate),
		CreatedBy:    empl.CreatedBy,
		UpdatedBy:    empl.UpdatedBy,
	}
	if !empl.CreatedAt.IsZero() {
		resp.CreatedAt = empl.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !empl.UpdatedAt.IsZero() {
		resp.UpdatedAt = empl.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if empl.Department != nil {
		resp.Department = &EmployeeDepartmentResponse{
			ID:   empl.Department.ID.String(),
			Name: empl.Department.Name,
			Code: empl.Department.Code,
		}
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
