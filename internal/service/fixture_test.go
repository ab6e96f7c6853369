package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
)

// fixture holds a memstore seeded with a small taxonomy and three staff accounts.
type fixture struct {
	store      *memstore.Store
	complaints *ComplaintService
	lifecycle  *LifecycleService
	triage     *TriageService
	reports    *ReportService
	recorder   *eventRecorder
	clock      *testClock

	userID     int64
	alice, bob int64
	adminID    int64

	hardware, hardwareIssue, keyNotWorking int64
	generalInquiry                         int64
}

// testClock reads the wall clock until a test pins it with set.
type testClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.at.IsZero() {
		return time.Now()
	}
	return c.at
}

func (c *testClock) set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{}
	store := memstore.New(memstore.WithClock(clock.now))
	repos := store.Repos()

	f := &fixture{store: store, recorder: &eventRecorder{}, clock: clock}

	hardware, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "Hardware")
	require.NoError(t, err)
	hardwareIssue, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelRelated, &hardware.ID, "Hardware Issue")
	require.NoError(t, err)
	keyNotWorking, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelSubRelated, &hardwareIssue.ID, "Key Not Working")
	require.NoError(t, err)
	others := domain.OthersIssueID
	general, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelRelated, &others, "General Inquiry")
	require.NoError(t, err)
	f.hardware, f.hardwareIssue, f.keyNotWorking, f.generalInquiry = hardware.ID, hardwareIssue.ID, keyNotWorking.ID, general.ID

	user := &domain.User{StaffNo: "U1", Name: "Dana"}
	require.NoError(t, repos.Users.Create(ctx, user))
	f.userID = user.ID
	for _, s := range []*domain.StaffMember{
		{StaffNo: "S1", Name: "Alice", Role: domain.StaffRoleSubadmin, Active: true},
		{StaffNo: "S2", Name: "Bob", Role: domain.StaffRoleSubadmin, Active: true},
		{StaffNo: "A1", Name: "Root", Role: domain.StaffRoleAdmin, Active: true},
	} {
		require.NoError(t, repos.Staff.Create(ctx, s))
		switch s.StaffNo {
		case "S1":
			f.alice = s.ID
		case "S2":
			f.bob = s.ID
		case "A1":
			f.adminID = s.ID
		}
	}

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, et := range []events.EventType{
		events.EventComplaintCreated, events.EventComplaintTaken, events.EventComplaintRejected,
		events.EventComplaintAssigned, events.EventComplaintResolved, events.EventComplaintDeleted,
	} {
		dispatcher.Subscribe(et, f.recorder.record)
	}

	f.complaints = NewComplaintService(ComplaintDependencies{Store: store, Dispatcher: dispatcher})
	f.triage = NewTriageService(TriageDependencies{Store: store, Dispatcher: dispatcher})
	f.lifecycle = NewLifecycleService(LifecycleDependencies{Store: store, Triage: f.triage, Dispatcher: dispatcher})
	f.reports = NewReportService(store)
	return f
}

// submitUncategorized files a complaint under "Others"/"Others".
func (f *fixture) submitUncategorized(t *testing.T, description string) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Submit(context.Background(), f.userID, ComplaintInput{Description: description})
	require.NoError(t, err)
	require.Equal(t, domain.ComplaintStatusPending, c.Status)
	return c
}

// submitCategorized files a complaint under Hardware / Hardware Issue.
func (f *fixture) submitCategorized(t *testing.T, description string) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Submit(context.Background(), f.userID, ComplaintInput{
		Description:    description,
		MainIssueID:    &f.hardware,
		RelatedIssueID: &f.hardwareIssue,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ComplaintStatusOpen, c.Status)
	return c
}

func (f *fixture) reload(t *testing.T, id int64) *domain.Complaint {
	t.Helper()
	c, err := f.store.Repos().Complaints.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}
