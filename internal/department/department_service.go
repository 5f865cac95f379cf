package department

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"time"

	departmenterrors "go-sge/internal/department/errors"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/importer"
	"go-sge/internal/shared/spreadsheet"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DepartmentsCacheKey = "departments:all"
	departmentsCacheTTL = 30 * time.Minute
)

var importColumns = []string{"name", "code"}

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor string, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, actor, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, actor string, file io.Reader) ([]DepartmentResponse, error)
	Export(ctx context.Context, w io.Writer) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, logger: l}
}

func (s *service) Create(ctx context.Context, actor string, req CreateDepartmentRequest) (DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if fields := validateFields(name, code); len(fields) > 0 {
		s.logger.Warn("create department validation failed", zap.Any("fields", fields))
		return DepartmentResponse{}, apperror.NewValidation(fields)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.ExistsByName(ctx, name, "")
	if err != nil {
		return DepartmentResponse{}, err
	}
	if exists {
		return DepartmentResponse{}, departmenterrors.ErrDuplicateDepartmentName
	}

	exists, err = qtx.ExistsByCode(ctx, code)
	if err != nil {
		return DepartmentResponse{}, err
	}
	if exists {
		return DepartmentResponse{}, departmenterrors.ErrDuplicateDepartmentCode
	}

	dept := &Department{
		ID:          uuid.New(),
		Name:        name,
		Code:        code,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actor,
	}

	if err := qtx.Create(ctx, dept); err != nil {
		s.logger.Error("create department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("department created", zap.String("department_id", dept.ID.String()), zap.String("code", code))

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, DepartmentsCacheKey).Result(); err == nil {
			var resp []DepartmentResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all departments failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	resp := mapToListResponse(depts)
	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, DepartmentsCacheKey, data, departmentsCacheTTL).Err(); err != nil {
				s.logger.Warn("cache departments failed", zap.Error(err))
			}
		}
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}

	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, actor, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidDepartmentID
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 {
		return DepartmentResponse{}, apperror.NewValidation(map[string][]string{
			"name": {"name must be at least 3 characters"},
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	exists, err := qtx.ExistsByName(ctx, name, id)
	if err != nil {
		return DepartmentResponse{}, err
	}
	if exists {
		return DepartmentResponse{}, departmenterrors.ErrDuplicateDepartmentName
	}

	dept.Name = name
	dept.Description = strings.TrimSpace(req.Description)
	dept.UpdatedBy = actor

	if err := qtx.Update(ctx, dept); err != nil {
		s.logger.Error("update department persist failed", zap.String("department_id", id), zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.invalidateCache(ctx)
	return mapToResponse(*dept), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return departmenterrors.ErrInvalidDepartmentID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		s.logger.Warn("delete department failed", zap.String("department_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("department deleted", zap.String("department_id", id))
	return nil
}

func (s *service) Import(ctx context.Context, actor string, file io.Reader) ([]DepartmentResponse, error) {
	rows, err := importer.ReadSheet(file, importColumns...)
	if err != nil {
		return nil, err
	}

	var created []DepartmentResponse
	n, err := importer.Reconcile(ctx, rows.Records, func(ctx context.Context, _ int, row spreadsheet.Row) error {
		resp, err := s.Create(ctx, actor, CreateDepartmentRequest{
			Name:        row.Get("name"),
			Code:        row.Get("code"),
			Description: row.Get("description"),
		})
		if err != nil {
			return err
		}
		created = append(created, resp)
		return nil
	})

	s.logger.Info("department import finished",
		zap.Int("rows", len(rows.Records)),
		zap.Int("imported", n),
		zap.Bool("partial", err != nil),
	)
	return created, err
}

func (s *service) Export(ctx context.Context, w io.Writer) error {
	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		return mapRepositoryError(err)
	}

	records := make([][]any, len(depts))
	for i, d := range depts {
		records[i] = []any{d.ID.String(), d.Name, d.Code, d.Description, d.CreatedAt.UTC().Format(time.RFC3339)}
	}
	return spreadsheet.Write(w, "Departments", []string{"Id", "Name", "Code", "Description", "Created At"}, records)
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, DepartmentsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate departments cache", zap.Error(err))
	}
}

func validateFields(name, code string) map[string][]string {
	fields := map[string][]string{}
	if len(name) < 3 {
		fields["name"] = append(fields["name"], "name must be at least 3 characters")
	}
	if len(code) < 3 || len(code) > 10 {
		fields["code"] = append(fields["code"], "code must be between 3 and 10 characters")
	}
	return fields
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          dept.ID.String(),
		Name:        dept.Name,
		Code:        dept.Code,
		Description: dept.Description,
		CreatedBy:   dept.CreatedBy,
		UpdatedBy:   dept.UpdatedBy,
		CreatedAt:   dept.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
