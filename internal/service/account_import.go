package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	accountColumnStaffNo    = "staffno"
	accountColumnRole       = "role"
	accountColumnName       = "name"
	accountColumnDepartment = "department"
	accountColumnPassword   = "password"
)

var accountRequiredColumns = []string{accountColumnStaffNo, accountColumnRole}

// AccountImportReport summarizes a bulk account import.
type AccountImportReport struct {
	Created int
	Updated int
	Failed  []ImportFailure
}

// ImportFailure describes a workbook row that was skipped. Row is 1-based and counts the header.
type ImportFailure struct {
	Row     int
	StaffNo string
	Reason  string
}

type accountRow struct {
	staffNo    string
	role       string
	name       string
	department string
	password   string
}

// errRowRejected marks a row-level problem that is reported instead of aborting the import.
type errRowRejected struct{ reason string }

func (e errRowRejected) Error() string { return e.reason }

func rejectRow(reason string) error { return errRowRejected{reason: reason} }

// ImportAccounts creates or updates user and staff accounts from the first sheet of an .xlsx workbook.
// Columns are matched case-insensitively, ignoring spaces and underscores. staffNo and role are
// required; role is one of user, subadmin or admin. Existing accounts get the row's password and
// any non-blank name or department. Invalid rows are reported and skipped. Storage failures abort.
func (s *StaffService) ImportAccounts(ctx context.Context, actor *domain.StaffMember, r io.Reader) (*AccountImportReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to parse Excel file", map[string]any{"reason": err.Error()})
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, apperrors.NewValidationError("Excel file has no sheets", nil)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read rows", map[string]any{"reason": err.Error()})
	}
	report := &AccountImportReport{}
	if len(rows) < 2 {
		return report, nil
	}

	headerMap := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headerMap[normalizeAccountHeader(h)] = i
	}
	for _, column := range accountRequiredColumns {
		if _, ok := headerMap[column]; !ok {
			return nil, apperrors.NewValidationError("missing column", map[string]any{"column": column})
		}
	}

	for i, row := range rows[1:] {
		cell := func(column string) string {
			idx, ok := headerMap[column]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		input := accountRow{
			staffNo:    domain.NormalizeStaffNo(cell(accountColumnStaffNo)),
			role:       strings.ToLower(cell(accountColumnRole)),
			name:       cell(accountColumnName),
			department: cell(accountColumnDepartment),
			password:   cell(accountColumnPassword),
		}
		if input.staffNo == "" && input.role == "" && input.name == "" {
			continue
		}
		created, err := s.importAccount(ctx, input)
		var rejected errRowRejected
		switch {
		case errors.As(err, &rejected):
			report.Failed = append(report.Failed, ImportFailure{Row: i + 2, StaffNo: input.staffNo, Reason: rejected.reason})
		case err != nil:
			return nil, err
		case created:
			report.Created++
		default:
			report.Updated++
		}
	}
	return report, nil
}

func (s *StaffService) importAccount(ctx context.Context, row accountRow) (bool, error) {
	if row.staffNo == "" {
		return false, rejectRow("staff number is required")
	}
	switch row.role {
	case "user":
		if _, err := strconv.ParseUint(row.staffNo, 10, 64); err != nil {
			return false, rejectRow("user staff number must be numeric")
		}
		if row.password == "" {
			row.password = row.staffNo
		}
		return s.upsertUser(ctx, row)
	case "subadmin", "admin":
		if len(row.password) < minPasswordLength {
			return false, rejectRow("password is required for staff accounts")
		}
		return s.upsertStaff(ctx, row, domain.StaffRole(strings.ToUpper(row.role)))
	case "":
		return false, rejectRow("role is required")
	}
	return false, rejectRow("invalid role")
}

func (s *StaffService) upsertUser(ctx context.Context, row accountRow) (bool, error) {
	hash, err := auth.HashPassword(row.password, s.bcryptCost)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	existing, err := s.users.GetByStaffNo(ctx, row.staffNo)
	if errors.Is(err, pgx.ErrNoRows) {
		user := &domain.User{StaffNo: row.staffNo, Name: row.name, Department: row.department, PasswordHash: hash}
		return true, apperrors.Storage(s.users.Create(ctx, user))
	}
	if err != nil {
		return false, apperrors.Storage(err)
	}
	if err := s.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
		return false, apperrors.Storage(err)
	}
	name, department := keepIfBlank(row.name, existing.Name), keepIfBlank(row.department, existing.Department)
	return false, apperrors.Storage(s.users.UpdateProfile(ctx, existing.ID, name, department))
}

func (s *StaffService) upsertStaff(ctx context.Context, row accountRow, role domain.StaffRole) (bool, error) {
	existing, err := s.staff.GetByStaffNo(ctx, row.staffNo)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.Storage(err)
	}
	if existing != nil && existing.Role != role {
		return false, rejectRow("staff number already registered with role " + strings.ToLower(string(existing.Role)))
	}
	hash, err := auth.HashPassword(row.password, s.bcryptCost)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	if existing == nil {
		staff := &domain.StaffMember{
			StaffNo:      row.staffNo,
			Name:         row.name,
			Department:   row.department,
			PasswordHash: hash,
			Role:         role,
			Active:       true,
		}
		return true, apperrors.Storage(s.staff.Create(ctx, staff))
	}
	if err := s.staff.UpdatePassword(ctx, existing.ID, hash); err != nil {
		return false, apperrors.Storage(err)
	}
	name, department := keepIfBlank(row.name, existing.Name), keepIfBlank(row.department, existing.Department)
	return false, apperrors.Storage(s.staff.UpdateProfile(ctx, existing.ID, name, department))
}

func normalizeAccountHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "").Replace(h)
}

func keepIfBlank(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
