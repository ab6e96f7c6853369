package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced is returned when a row cannot be removed because other rows point at it.
	ErrReferenced = errors.New("record is referenced")
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is a DBTX that can open transactions.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Taxonomy       TaxonomyRepository
	Complaints     ComplaintRepository
	Reviews        ReviewRepository
	Feedback       FeedbackRepository
	ResolutionLogs ResolutionLogRepository
	Users          UserRepository
	Staff          StaffRepository
	Reports        ReportRepository
}

// Store hands out repositories and scopes multi-step writes in a transaction.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn in one transaction. Returning an error rolls everything back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type postgresStore struct {
	db TxBeginner
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(db TxBeginner) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Repos() Repositories {
	return newRepositories(s.db)
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(ctx, newRepositories(tx))
	})
}

func newRepositories(db DBTX) Repositories {
	return Repositories{
		Taxonomy:       NewTaxonomyRepository(db),
		Complaints:     NewComplaintRepository(db),
		Reviews:        NewReviewRepository(db),
		Feedback:       NewFeedbackRepository(db),
		ResolutionLogs: NewResolutionLogRepository(db),
		Users:          NewUserRepository(db),
		Staff:          NewStaffRepository(db),
		Reports:        NewReportRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
