// Package importer applies a row handler to every record of an uploaded sheet
// and folds the failures into one validation error.
package importer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/spreadsheet"
)

// GeneralKey holds failures that are not tied to a row, such as missing columns.
const GeneralKey = "general"

// FirstDataRow is the sheet row number of the first record; row 1 is the header.
const FirstDataRow = 2

// RowErrors lists every problem found on a single row.
type RowErrors []string

func (e RowErrors) Error() string {
	return strings.Join(e, "; ")
}

// Add appends a message.
func (e *RowErrors) Add(msg string) {
	*e = append(*e, msg)
}

// Err returns nil when no problem was recorded.
func (e RowErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// RowFunc validates and persists one record.
type RowFunc func(ctx context.Context, rowNumber int, row spreadsheet.Row) error

// Reconcile runs fn for every record. Rows are independent: a failing row is
// recorded and the loop moves on, and rows already handled stay persisted.
// The returned count is the number of rows fn accepted.
func Reconcile(ctx context.Context, records []spreadsheet.Row, fn RowFunc) (int, error) {
	failures := make(map[string][]string)
	accepted := 0

	for i, row := range records {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}

		rowNumber := i + FirstDataRow
		if err := fn(ctx, rowNumber, row); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return accepted, ctxErr
			}
			key := strconv.Itoa(rowNumber)
			failures[key] = append(failures[key], messages(err)...)
			continue
		}
		accepted++
	}

	if len(failures) > 0 {
		return accepted, apperror.NewValidation(failures)
	}
	return accepted, nil
}

// MissingColumns reports absent headers as a general validation error.
func MissingColumns(rows spreadsheet.Rows, required ...string) error {
	missing := rows.MissingColumns(required...)
	if len(missing) == 0 {
		return nil
	}
	return apperror.NewValidation(map[string][]string{
		GeneralKey: {"missing required columns: " + strings.Join(missing, ", ")},
	})
}

func messages(err error) []string {
	var rowErrs RowErrors
	if errors.As(err, &rowErrs) {
		return rowErrs
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if fields, ok := apperror.ValidationDetails(appErr); ok {
			var out []string
			for _, msgs := range fields {
				out = append(out, msgs...)
			}
			return out
		}
		if appErr.HTTPStatus < 500 {
			return []string{appErr.Message}
		}
	}
	return []string{"unexpected error while importing row"}
}

// ReadSheet loads an uploaded workbook and checks the required headers.
func ReadSheet(file io.Reader, required ...string) (spreadsheet.Rows, error) {
	rows, err := spreadsheet.Read(file)
	if err != nil {
		return spreadsheet.Rows{}, apperror.Wrap(err, apperror.CodeInvalidInput,
			"Uploaded file is not a readable workbook", http.StatusBadRequest)
	}
	if err := MissingColumns(rows, required...); err != nil {
		return spreadsheet.Rows{}, err
	}
	return rows, nil
}
