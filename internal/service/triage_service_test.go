package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// takenUncategorized files an "Others" complaint and lets alice take it.
func (f *fixture) takenUncategorized(t *testing.T, description string) *domain.Complaint {
	t.Helper()
	c := f.submitUncategorized(t, description)
	_, err := f.lifecycle.Take(context.Background(), f.alice, c.ID)
	require.NoError(t, err)
	return f.reload(t, c.ID)
}

func TestResolveUncategorizedCreatesHierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.takenUncategorized(t, "outlook keeps crashing")
	minor := domain.SeverityMinor

	res, err := f.triage.ResolveUncategorized(ctx, f.alice, c.ID, TriageInput{
		MainIssue:        &IssueRef{Name: "Software"},
		RelatedIssue:     &IssueRef{Name: "Email"},
		SubRelatedIssue:  &IssueRef{Name: "Outlook <i>Crash</i>"},
		IssueDescription: "Outlook crashes on start",
		SolutionSteps:    []string{"Start in safe mode", "Disable add-ins"},
		Severity:         &minor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusClosed, res.Status)
	assert.Equal(t, "Uncategorized complaint resolved successfully", res.Message)

	repos := f.store.Repos()
	software, err := repos.Taxonomy.FindNodeByName(ctx, domain.IssueLevelMain, nil, "Software")
	require.NoError(t, err)
	email, err := repos.Taxonomy.FindNodeByName(ctx, domain.IssueLevelRelated, &software.ID, "Email")
	require.NoError(t, err)
	crash, err := repos.Taxonomy.FindNodeByName(ctx, domain.IssueLevelSubRelated, &email.ID, "Outlook Crash")
	require.NoError(t, err)

	stored := f.reload(t, c.ID)
	assert.Equal(t, software.ID, *stored.MainIssueID)
	assert.Equal(t, email.ID, *stored.RelatedIssueID)
	assert.Equal(t, crash.ID, *stored.SubRelatedIssueID)
	assert.Equal(t, crash.ID, *stored.FinalSubRelatedIssueID)
	assert.Equal(t, domain.OthersIssueID, *stored.OriginalMainIssueID)
	assert.Equal(t, f.alice, *stored.DoneByID)
	assert.Equal(t, domain.SeverityMinor, *stored.Severity)

	description, err := repos.Taxonomy.FirstDescription(ctx, crash.ID)
	require.NoError(t, err)
	assert.Equal(t, "Outlook crashes on start", description.Text)
	assert.Equal(t, description.ID, *stored.IssueDescriptionID)
	steps, err := repos.Taxonomy.ListSteps(ctx, description.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "Start in safe mode", steps[0].Instruction)
	assert.Equal(t, 2, steps[1].StepNumber)

	assert.Contains(t, f.recorder.types(), events.EventComplaintResolved)
}

func TestResolveUncategorizedMainOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.takenUncategorized(t, "something about hardware")

	_, err := f.triage.ResolveUncategorized(ctx, f.alice, c.ID, TriageInput{MainIssue: &IssueRef{ID: &f.hardware}})
	require.NoError(t, err)

	stored := f.reload(t, c.ID)
	assert.Equal(t, f.hardware, *stored.MainIssueID)
	assert.Nil(t, stored.RelatedIssueID)
	assert.Nil(t, stored.SubRelatedIssueID)
	assert.Equal(t, domain.ComplaintStatusClosed, stored.Status)

	snapshot, err := f.store.Repos().Reviews.GetUncategorizedResolution(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, f.hardware, snapshot.MainIssueID)
	assert.Nil(t, snapshot.RelatedIssueID)
}

func TestResolveUncategorizedTwiceIsInvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.takenUncategorized(t, "odd")
	input := TriageInput{MainIssue: &IssueRef{ID: &f.hardware}}

	_, err := f.triage.ResolveUncategorized(ctx, f.alice, c.ID, input)
	require.NoError(t, err)
	_, err = f.triage.ResolveUncategorized(ctx, f.alice, c.ID, input)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
}

func TestResolveUncategorizedStateGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := TriageInput{MainIssue: &IssueRef{ID: &f.hardware}}

	pending := f.submitUncategorized(t, "not taken yet")
	_, err := f.triage.ResolveUncategorized(ctx, f.alice, pending.ID, input)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))

	categorized := f.submitCategorized(t, "keyboard")
	_, err = f.triage.ResolveUncategorized(ctx, f.alice, categorized.ID, input)
	require.True(t, apperrors.Is(err, apperrors.CodeInvalidState))
	assert.Equal(t, "complaint is already categorized", apperrors.ToDomainError(err).Message)

	_, err = f.triage.ResolveUncategorized(ctx, f.alice, 404, input)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestResolveUncategorizedNestingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.takenUncategorized(t, "odd")

	cases := map[string]TriageInput{
		"missing main": {RelatedIssue: &IssueRef{Name: "Email"}},
		"sub without related": {
			MainIssue:       &IssueRef{Name: "Software"},
			SubRelatedIssue: &IssueRef{Name: "Outlook Crash"},
		},
		"description without sub": {
			MainIssue:        &IssueRef{Name: "Software"},
			RelatedIssue:     &IssueRef{Name: "Email"},
			IssueDescription: "orphan",
		},
		"blank step": {
			MainIssue:       &IssueRef{Name: "Software"},
			RelatedIssue:    &IssueRef{Name: "Email"},
			SubRelatedIssue: &IssueRef{Name: "Outlook Crash"},
			SolutionSteps:   []string{"Restart", "  "},
		},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.triage.ResolveUncategorized(ctx, f.alice, c.ID, input)
			assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		})
	}

	_, err := f.store.Repos().Taxonomy.FindNodeByName(ctx, domain.IssueLevelMain, nil, "Software")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	assert.Equal(t, domain.ComplaintStatusOpen, f.reload(t, c.ID).Status)
}

func TestResolveUncategorizedRollsBackOnMismatchedParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.takenUncategorized(t, "network is down")
	before := len(f.recorder.types())

	_, err := f.triage.ResolveUncategorized(ctx, f.alice, c.ID, TriageInput{
		MainIssue:    &IssueRef{Name: "Networking"},
		RelatedIssue: &IssueRef{ID: &f.hardwareIssue},
	})
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))

	repos := f.store.Repos()
	_, err = repos.Taxonomy.FindNodeByName(ctx, domain.IssueLevelMain, nil, "Networking")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	_, err = repos.Reviews.GetUncategorizedResolution(ctx, c.ID)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	stored := f.reload(t, c.ID)
	assert.Equal(t, domain.ComplaintStatusOpen, stored.Status)
	assert.Equal(t, domain.OthersIssueID, *stored.MainIssueID)
	assert.Len(t, f.recorder.types(), before)
}

func TestResolveUncategorizedStepsReuseFirstDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := func() TriageInput {
		return TriageInput{
			MainIssue:       &IssueRef{ID: &f.hardware},
			RelatedIssue:    &IssueRef{ID: &f.hardwareIssue},
			SubRelatedIssue: &IssueRef{ID: &f.keyNotWorking},
			SolutionSteps:   []string{"Replace keyboard"},
		}
	}

	first := f.takenUncategorized(t, "my keys do nothing")
	_, err := f.triage.ResolveUncategorized(ctx, f.alice, first.ID, input())
	require.NoError(t, err)

	description, err := f.store.Repos().Taxonomy.FirstDescription(ctx, f.keyNotWorking)
	require.NoError(t, err)
	assert.Equal(t, "my keys do nothing", description.Text)

	second := f.takenUncategorized(t, "keyboard dead again")
	_, err = f.triage.ResolveUncategorized(ctx, f.alice, second.ID, input())
	require.NoError(t, err)
	assert.Equal(t, description.ID, *f.reload(t, second.ID).IssueDescriptionID)
}

func TestResolveUncategorizedRejectsUnknownDoneBy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.takenUncategorized(t, "printer is smoking")
	ghost := int64(999)

	_, err := f.triage.ResolveUncategorized(ctx, f.alice, c.ID, TriageInput{
		MainIssue: &IssueRef{Name: "Printers"},
		DoneByID:  &ghost,
	})
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
	assert.Equal(t, ghost, apperrors.ToDomainError(err).Details["done_by_id"])

	stored := f.reload(t, c.ID)
	assert.Equal(t, domain.ComplaintStatusOpen, stored.Status)
	assert.Nil(t, stored.DoneByID)
	_, err = f.store.Repos().Taxonomy.FindNodeByName(ctx, domain.IssueLevelMain, nil, "Printers")
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
}
