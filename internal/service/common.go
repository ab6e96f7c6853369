package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// TransitionRecorder counts status changes. *observability.Metrics satisfies it.
type TransitionRecorder interface {
	RecordTransition(from, to string)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func userActor(userID int64) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func staffActor(staffID int64) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}

// notFoundOr turns a missing row into NotFound and anything else into a storage failure.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.Storage(err)
}

// loadComplaintForUpdate locks the complaint row for the rest of the transaction.
func loadComplaintForUpdate(ctx context.Context, repos repository.Repositories, complaintID int64) (*domain.Complaint, error) {
	complaint, err := repos.Complaints.GetForUpdate(ctx, complaintID)
	if err != nil {
		return nil, notFoundOr(err, "complaint", map[string]any{"complaint_id": complaintID})
	}
	return complaint, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// checkDoneBy rejects a done_by_id that does not name a staff member.
func checkDoneBy(ctx context.Context, repos repository.Repositories, doneByID *int64) error {
	if doneByID == nil {
		return nil
	}
	if _, err := repos.Staff.GetByID(ctx, *doneByID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("done_by_id does not reference a staff member", map[string]any{"done_by_id": *doneByID})
		}
		return apperrors.Storage(err)
	}
	return nil
}
