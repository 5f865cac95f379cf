package employee_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-sge/internal/department"
	"go-sge/internal/employee"
	employeeerrors "go-sge/internal/employee/errors"
	employeeMock "go-sge/internal/employee/mock"
	"go-sge/internal/events"
	"go-sge/internal/messaging/kafka"
	kafkaMock "go-sge/internal/messaging/kafka/mock"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/contextutil"
	"go-sge/internal/shared/spreadsheet"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redisMock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	rdb, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	t.Cleanup(func() { db.Close() })

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   employee.NewServiceWithOutbox(db, repo, outboxRepo, rdb),
		repo:      repo,
		outbox:    outboxRepo,
		redisMock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest(deptID string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FirstName:    "Marie",
		LastName:     "Curie",
		Gender:       employee.GenderFemale,
		Email:        "Marie.Curie@sge.com",
		Position:     "Researcher",
		Salary:       4200,
		DepartmentID: deptID,
		HireDate:     "2024-03-01",
	}
}

var uniqueIDPattern = regexp.MustCompile(`^MACU[A-Z0-9]RND$`)

func TestEmployeeService_Create(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-42")
	actor := uuid.NewString()
	deptID := uuid.NewString()

	t.Run("success generates unique id and queues event", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest(deptID)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(ctx, deptID).Return("RND", nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, "marie.curie@sge.com", "").Return(false, nil)
		deps.repo.EXPECT().ExistsByUniqueID(ctx, gomock.Any()).Return(false, nil)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Regexp(t, uniqueIDPattern, e.UniqueID)
				assert.Equal(t, actor, e.CreatedBy)
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), e.HireDate)
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, MatchEmployeeCreated("req-42")).Return(nil)
		deps.redisMock.ExpectDel(employee.EmployeeOptionsCacheKey).SetVal(1)

		resp, err := deps.service.Create(ctx, actor, req)

		require.NoError(t, err)
		assert.Regexp(t, uniqueIDPattern, resp.UniqueID)
		assert.Equal(t, "Marie Curie", resp.FullName)
		assert.Equal(t, "marie.curie@sge.com", resp.Email)
		assert.Equal(t, "2024-03-01", resp.HireDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("retries unique id until free", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(ctx, deptID).Return("RND", nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, gomock.Any(), "").Return(false, nil)
		gomock.InOrder(
			deps.repo.EXPECT().ExistsByUniqueID(ctx, gomock.Any()).Return(true, nil).Times(3),
			deps.repo.EXPECT().ExistsByUniqueID(ctx, gomock.Any()).Return(false, nil),
		)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.redisMock.ExpectDel(employee.EmployeeOptionsCacheKey).SetVal(1)

		_, err := deps.service.Create(ctx, actor, validCreateRequest(deptID))

		assert.NoError(t, err)
	})

	t.Run("unique id exhausted after ten attempts", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(ctx, deptID).Return("RND", nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, gomock.Any(), "").Return(false, nil)
		deps.repo.EXPECT().ExistsByUniqueID(ctx, gomock.Any()).Return(true, nil).Times(10)

		_, err := deps.service.Create(ctx, actor, validCreateRequest(deptID))

		assert.ErrorIs(t, err, employeeerrors.ErrUniqueIDExhausted)
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeData)
		assert.Equal(t, 400, apperror.ToHTTP(err).Status)
	})

	t.Run("department not found", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(ctx, deptID).Return("", nil)

		_, err := deps.service.Create(ctx, actor, validCreateRequest(deptID))

		assert.ErrorIs(t, err, employeeerrors.ErrDepartmentNotFound)
	})

	t.Run("email already used", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(ctx, deptID).Return("RND", nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, "marie.curie@sge.com", "").Return(true, nil)

		_, err := deps.service.Create(ctx, actor, validCreateRequest(deptID))

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeEmailAlreadyExists)
	})

	t.Run("unique constraint race maps to conflict", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(ctx, deptID).Return("RND", nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, gomock.Any(), "").Return(false, nil)
		deps.repo.EXPECT().ExistsByUniqueID(ctx, gomock.Any()).Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"})

		_, err := deps.service.Create(ctx, actor, validCreateRequest(deptID))

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeEmailAlreadyExists)
	})

	t.Run("invalid fields are reported together", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, actor, employee.CreateEmployeeRequest{
			FirstName:    "Al",
			Gender:       "unknown",
			Email:        "not-an-email",
			DepartmentID: "x",
			HireDate:     "someday",
		})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		fields, ok := apperror.ValidationDetails(appErr)
		require.True(t, ok)
		assert.ElementsMatch(t,
			[]string{"last_name", "email", "gender", "department_id", "hire_date"},
			keys(fields),
		)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached, _ := json.Marshal([]employee.EmployeeOptionResponse{{ID: uuid.NewString(), FullName: "Ada Lovelace"}})
		deps.redisMock.ExpectGet(employee.EmployeeOptionsCacheKey).SetVal(string(cached))

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "Ada Lovelace", resp[0].FullName)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.redisMock.ExpectGet(employee.EmployeeOptionsCacheKey).RedisNil()
		deps.repo.EXPECT().FindOptions(gomock.Any()).Return([]employee.Employee{
			{ID: id, UniqueID: "ADLOXIT", FirstName: "Ada", LastName: "Lovelace"},
		}, nil)

		want := []employee.EmployeeOptionResponse{{ID: id.String(), UniqueID: "ADLOXIT", FullName: "Ada Lovelace"}}
		payload, _ := json.Marshal(want)
		deps.redisMock.ExpectSet(employee.EmployeeOptionsCacheKey, payload, time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, resp)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redisMock.ExpectGet(employee.EmployeeOptionsCacheKey).RedisNil()
		deps.repo.EXPECT().FindOptions(gomock.Any()).Return(nil, errors.New("database connection lost"))

		resp, err := deps.service.GetOptions(ctx)

		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "database connection lost")
	})
}

func TestEmployeeService_Finders(t *testing.T) {
	ctx := context.Background()
	deptID := uuid.New()
	dept := &department.Department{ID: deptID, Name: "Research", Code: "RND"}

	t.Run("get by id not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("get by id rejects malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "42")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("get by email", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByEmail(ctx, "ada@sge.com").Return(&employee.Employee{
			ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@sge.com",
			DepartmentID: deptID, Department: dept,
		}, nil)

		resp, err := deps.service.GetByEmail(ctx, " ada@sge.com ")

		require.NoError(t, err)
		require.NotNil(t, resp.Department)
		assert.Equal(t, "RND", resp.Department.Code)
	})

	t.Run("get by department", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByDepartment(ctx, deptID.String()).Return([]employee.Employee{
			{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", DepartmentID: deptID},
			{ID: uuid.New(), FirstName: "Alan", LastName: "Turing", DepartmentID: deptID},
		}, nil)

		resp, err := deps.service.GetByDepartment(ctx, deptID.String())

		require.NoError(t, err)
		assert.Len(t, resp, 2)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()
	actor := uuid.NewString()
	id := uuid.New()
	oldDept := uuid.New()
	newDept := uuid.New()

	existing := func() *employee.Employee {
		return &employee.Employee{
			ID: id, UniqueID: "MACUXRND", FirstName: "Marie", LastName: "Curie",
			Email: "marie.curie@sge.com", DepartmentID: oldDept,
		}
	}

	t.Run("moves employee to another department", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := employee.UpdateEmployeeRequest(validCreateRequest(newDept.String()))
		req.Salary = 5000

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().GetDepartmentCode(ctx, newDept.String()).Return("OPS", nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, "marie.curie@sge.com", id.String()).Return(false, nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, newDept, e.DepartmentID)
				assert.Equal(t, "MACUXRND", e.UniqueID)
				assert.Equal(t, actor, e.UpdatedBy)
				return nil
			})
		deps.redisMock.ExpectDel(employee.EmployeeOptionsCacheKey).SetVal(1)

		resp, err := deps.service.Update(ctx, actor, id.String(), req)

		require.NoError(t, err)
		assert.Equal(t, 5000.0, resp.Salary)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown target department", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().GetDepartmentCode(ctx, newDept.String()).Return("", nil)

		_, err := deps.service.Update(ctx, actor, id.String(), employee.UpdateEmployeeRequest(validCreateRequest(newDept.String())))

		assert.ErrorIs(t, err, employeeerrors.ErrDepartmentNotFound)
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing(), nil)
		deps.repo.EXPECT().ExistsByEmail(ctx, "marie.curie@sge.com", id.String()).Return(true, nil)

		_, err := deps.service.Update(ctx, actor, id.String(), employee.UpdateEmployeeRequest(validCreateRequest(oldDept.String())))

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeEmailAlreadyExists)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, id).Return(nil)
		deps.redisMock.ExpectDel(employee.EmployeeOptionsCacheKey).SetVal(1)

		assert.NoError(t, deps.service.Delete(ctx, id))
	})

	t.Run("referenced by attendance", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, id).
			Return(&pgconn.PgError{Code: "23503", ConstraintName: "fk_attendances_employee"})

		err := deps.service.Delete(ctx, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeInUse)
	})
}

func TestEmployeeService_Import(t *testing.T) {
	ctx := context.Background()
	actor := uuid.NewString()
	deptID := uuid.NewString()

	t.Run("missing columns reported under general", func(t *testing.T) {
		deps := setupServiceTest(t)
		var file bytes.Buffer
		require.NoError(t, spreadsheet.Write(&file, "Employees",
			[]string{"First Name", "Last Name", "Email"},
			[][]any{{"Ada", "Lovelace", "ada@sge.com"}},
		))

		_, err := deps.service.Import(ctx, actor, &file)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		fields, _ := apperror.ValidationDetails(appErr)
		require.Contains(t, fields, "general")
		assert.Contains(t, fields["general"][0], "departmentid")
	})

	t.Run("rows persist independently", func(t *testing.T) {
		deps := setupServiceTest(t)
		var file bytes.Buffer
		require.NoError(t, spreadsheet.Write(&file, "Employees",
			[]string{"FirstName", "LastName", "Email", "DepartmentId", "HireDate", "Salary", "Gender"},
			[][]any{
				{"Ada", "Lovelace", "ada@sge.com", deptID, "15/01/2024", "3000", "female"},
				{"", "Turing", "alan@sge.com", "nope", "soon", "lots", "x"},
			},
		))

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().GetDepartmentCode(gomock.Any(), deptID).Return("IT", nil)
		deps.repo.EXPECT().ExistsByEmail(gomock.Any(), "ada@sge.com", "").Return(false, nil)
		deps.repo.EXPECT().ExistsByUniqueID(gomock.Any(), gomock.Any()).Return(false, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, 3000.0, e.Salary)
				assert.Equal(t, employee.GenderFemale, e.Gender)
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.redisMock.ExpectDel(employee.EmployeeOptionsCacheKey).SetVal(1)

		created, err := deps.service.Import(ctx, actor, &file)

		assert.Len(t, created, 1)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		fields, _ := apperror.ValidationDetails(appErr)
		require.Contains(t, fields, "3")
		assert.Len(t, fields["3"], 5)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Export(t *testing.T) {
	deps := setupServiceTest(t)
	deps.repo.EXPECT().FindAll(gomock.Any()).Return([]employee.Employee{
		{ID: uuid.New(), UniqueID: "ADLOXIT", FirstName: "Ada", LastName: "Lovelace",
			HireDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Department: &department.Department{Name: "IT"}},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, deps.service.Export(context.Background(), &buf))

	rows, err := spreadsheet.Read(&buf)
	require.NoError(t, err)
	require.Len(t, rows.Records, 1)
	assert.Equal(t, "ADLOXIT", rows.Records[0].Get("uniqueid"))
	assert.Equal(t, "2024-01-15", rows.Records[0].Get("hiredate"))
	assert.Equal(t, "IT", rows.Records[0].Get("department"))
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

type employeeCreatedMatcher struct {
	requestID string
}

func (m employeeCreatedMatcher) Matches(x any) bool {
	event, ok := x.(kafka.OutboxEvent)
	if !ok || event.RequestID != m.requestID || event.Topic != events.EmployeeLifecycleTopic {
		return false
	}
	var payload events.EmployeeCreatedEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return false
	}
	return payload.EventType == events.EmployeeCreatedType && payload.EmployeeID == event.AggregateID
}

func (m employeeCreatedMatcher) String() string {
	return "employee_created outbox event with request_id " + m.requestID
}

func MatchEmployeeCreated(rid string) gomock.Matcher {
	return employeeCreatedMatcher{requestID: rid}
}
