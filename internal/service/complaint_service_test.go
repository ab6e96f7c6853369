package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestSubmitInitialStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	others := domain.OthersIssueID

	tests := []struct {
		name    string
		input   ComplaintInput
		want    domain.ComplaintStatus
		pending bool
	}{
		{name: "defaults to others", input: ComplaintInput{Description: "help"}, want: domain.ComplaintStatusPending, pending: true},
		{name: "explicit others pair", input: ComplaintInput{Description: "help", MainIssueID: &others, RelatedIssueID: &others}, want: domain.ComplaintStatusPending, pending: true},
		{name: "others with real related", input: ComplaintInput{Description: "question", MainIssueID: &others, RelatedIssueID: &f.generalInquiry}, want: domain.ComplaintStatusOpen},
		{name: "categorized", input: ComplaintInput{Description: "keys", MainIssueID: &f.hardware, RelatedIssueID: &f.hardwareIssue}, want: domain.ComplaintStatusOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.complaints.Submit(ctx, f.userID, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Status)
			assert.Equal(t, domain.ComplaintPriorityMedium, c.Priority)

			_, err = f.store.Repos().Reviews.GetPendingReview(ctx, c.ID)
			if tt.pending {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSubmitRecordsOriginalCategoryAndLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.complaints.Submit(ctx, f.userID, ComplaintInput{
		Description: "  <script>alert(1)</script>screen flickers ",
		SessionID:   "chat-42",
		IsResolved:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "screen flickers", c.Description)
	assert.Equal(t, domain.OthersIssueID, *c.OriginalMainIssueID)
	assert.True(t, c.IsAIResolved)

	logs, err := f.store.Repos().ResolutionLogs.ListByComplaint(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionSubmitComplaint, logs[0].Action)
	assert.Equal(t, "chat-42", logs[0].SessionID)
	assert.Equal(t, []events.EventType{events.EventComplaintCreated}, f.recorder.types())
}

func TestSubmitAttachesSubIssueDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	desc := &domain.IssueDescription{SubRelatedIssueID: f.keyNotWorking, Text: "Keys unresponsive"}
	require.NoError(t, f.store.Repos().Taxonomy.CreateDescription(ctx, desc))

	c, err := f.complaints.Submit(ctx, f.userID, ComplaintInput{
		MainIssueID:       &f.hardware,
		RelatedIssueID:    &f.hardwareIssue,
		SubRelatedIssueID: &f.keyNotWorking,
		IssueDescription:  "Keys unresponsive",
		Priority:          domain.ComplaintPriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Keys unresponsive", c.Description)
	assert.Equal(t, f.keyNotWorking, *c.SubRelatedIssueID)
	assert.Equal(t, desc.ID, *c.IssueDescriptionID)
	assert.Nil(t, c.OriginalMainIssueID)
}

func TestSubmitRejectsBrokenChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := int64(999)

	tests := map[string]ComplaintInput{
		"main without related":   {MainIssueID: &f.hardware},
		"related under other":    {MainIssueID: &f.hardware, RelatedIssueID: &f.generalInquiry},
		"unknown main":           {MainIssueID: &missing, RelatedIssueID: &f.hardwareIssue},
		"sub under wrong parent": {MainIssueID: &f.hardware, RelatedIssueID: &f.hardwareIssue, SubRelatedIssueID: &missing},
		"bad priority":           {Priority: "Urgent"},
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.complaints.Submit(ctx, f.userID, input)
			assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		})
	}
	assert.Empty(t, f.recorder.types())
}

func TestLogResolutionAlwaysRecords(t *testing.T) {
	f := newFixture(t)

	entry, err := f.complaints.LogResolution(context.Background(), f.userID, false, "")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.NotEmpty(t, entry.SessionID)
	assert.Equal(t, domain.ActionSelfService, entry.Action)
	assert.Nil(t, entry.ComplaintID)
}

func TestListForUserMasksTriagedCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.submitUncategorized(t, "keys dead")
	_, err := f.lifecycle.Take(ctx, f.alice, c.ID)
	require.NoError(t, err)
	_, err = f.triage.ResolveUncategorized(ctx, f.alice, c.ID, TriageInput{
		MainIssue:    &IssueRef{ID: &f.hardware},
		RelatedIssue: &IssueRef{ID: &f.hardwareIssue},
	})
	require.NoError(t, err)
	f.submitCategorized(t, "mouse broken")

	views, err := f.complaints.ListForUser(ctx, f.userID, Page{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	byID := map[int64]ComplaintView{}
	for _, v := range views {
		byID[v.Complaint.ID] = v
	}
	assert.Equal(t, domain.OthersIssueName, byID[c.ID].MainIssue)
	assert.Equal(t, domain.OthersIssueName, byID[c.ID].RelatedIssue)
	assert.Equal(t, "Alice", byID[c.ID].DoneBy)

	staffViews, err := f.reports.GeneralQueue(ctx, Page{})
	require.NoError(t, err)
	var triaged *ComplaintView
	for i := range staffViews {
		if staffViews[i].Complaint.ID == c.ID {
			triaged = &staffViews[i]
		}
	}
	require.NotNil(t, triaged)
	assert.Equal(t, "Hardware", triaged.MainIssue)
	assert.Equal(t, "Hardware Issue", triaged.RelatedIssue)
}

func TestTrackIncludesSolutionAndFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.submitCategorized(t, "keyboard")
	_, err := f.lifecycle.Take(ctx, f.alice, c.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.ResolveGeneral(ctx, f.alice, c.ID, ResolutionInput{DirectSolution: "Swapped keyboard"})
	require.NoError(t, err)
	_, err = f.complaints.SubmitFeedback(ctx, f.userID, c.ID, domain.FeedbackGood, "quick")
	require.NoError(t, err)

	views, err := f.complaints.Track(ctx, f.userID, Page{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Swapped keyboard", views[0].DirectSolution)
	assert.Equal(t, "Alice", views[0].AssignedTo)
	require.NotNil(t, views[0].Feedback)
	assert.Equal(t, domain.FeedbackGood, views[0].Feedback.Label)

	summary, err := f.complaints.Summary(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total)
	assert.Equal(t, int64(1), summary.Resolved)
	assert.Equal(t, int64(0), summary.Unresolved)
}

func TestSubmitFeedbackGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.submitCategorized(t, "keyboard")
	_, err := f.complaints.SubmitFeedback(ctx, f.userID, open.ID, domain.FeedbackExcellent, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidState))

	_, err = f.complaints.SubmitFeedback(ctx, f.userID, open.ID, "Amazing", "")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = f.complaints.SubmitFeedback(ctx, f.userID+100, open.ID, domain.FeedbackGood, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	_, err = f.lifecycle.ResolveGeneral(ctx, f.bob, open.ID, ResolutionInput{DirectSolution: "fixed"})
	require.NoError(t, err)
	feedback, err := f.complaints.SubmitFeedback(ctx, f.userID, open.ID, domain.FeedbackVeryPoor, "<b>slow</b>")
	require.NoError(t, err)
	assert.Equal(t, f.bob, feedback.SubadminID)
	assert.Equal(t, "slow", feedback.Comment)

	_, err = f.complaints.SubmitFeedback(ctx, f.userID, open.ID, domain.FeedbackGood, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}
