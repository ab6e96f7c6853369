package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

func TestNewSeedsOthersSentinel(t *testing.T) {
	store := New()
	ctx := context.Background()

	main, err := store.Repos().Taxonomy.GetNode(ctx, domain.IssueLevelMain, domain.OthersIssueID)
	require.NoError(t, err)
	assert.Equal(t, domain.OthersIssueName, main.Name)

	related, err := store.Repos().Taxonomy.GetNode(ctx, domain.IssueLevelRelated, domain.OthersIssueID)
	require.NoError(t, err)
	require.NotNil(t, related.ParentID)
	assert.Equal(t, domain.OthersIssueID, *related.ParentID)

	next, err := store.Repos().Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "Hardware")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestGetOrInsertNodeIsCaseInsensitive(t *testing.T) {
	store := New()
	ctx := context.Background()
	tax := store.Repos().Taxonomy

	first, err := tax.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "Network")
	require.NoError(t, err)
	second, err := tax.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "  network ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	nodes, err := tax.ListNodes(ctx, domain.IssueLevelMain, nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestGetOrInsertNodeRequiresExistingParent(t *testing.T) {
	store := New()
	missing := int64(99)

	_, err := store.Repos().Taxonomy.GetOrInsertNode(context.Background(), domain.IssueLevelRelated, &missing, "Printer")

	assert.Error(t, err)
}

func TestWithinTxDiscardsWritesOnError(t *testing.T) {
	store := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Taxonomy.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "Software"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Repos().Taxonomy.FindNodeByName(ctx, domain.IssueLevelMain, nil, "Software")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestWithinTxPublishesOnSuccess(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Complaints.Create(ctx, &domain.Complaint{UserID: 1, Description: "slow login", Status: domain.ComplaintStatusOpen})
	})
	require.NoError(t, err)

	list, err := store.Repos().Complaints.List(ctx, repository.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "slow login", list[0].Description)
}

func TestSoftDeletedComplaintsAreHidden(t *testing.T) {
	store := New()
	ctx := context.Background()
	repos := store.Repos()

	complaint := &domain.Complaint{UserID: 4, Description: "vpn drops", Status: domain.ComplaintStatusOpen}
	require.NoError(t, repos.Complaints.Create(ctx, complaint))
	require.NoError(t, repos.Complaints.SoftDelete(ctx, complaint.ID))

	_, err := repos.Complaints.GetByID(ctx, complaint.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, repos.Complaints.SoftDelete(ctx, complaint.ID), pgx.ErrNoRows)
}

func TestDeleteNodeWithChildrenIsReferenced(t *testing.T) {
	store := New()
	ctx := context.Background()
	tax := store.Repos().Taxonomy

	main, err := tax.GetOrInsertNode(ctx, domain.IssueLevelMain, nil, "Hardware")
	require.NoError(t, err)
	_, err = tax.GetOrInsertNode(ctx, domain.IssueLevelRelated, &main.ID, "Keyboard")
	require.NoError(t, err)

	assert.ErrorIs(t, tax.DeleteNode(ctx, domain.IssueLevelMain, main.ID), repository.ErrReferenced)
}

func TestFeedbackIsUniquePerComplaintAndUser(t *testing.T) {
	store := New()
	ctx := context.Background()
	fb := store.Repos().Feedback

	require.NoError(t, fb.Create(ctx, &domain.Feedback{ComplaintID: 1, UserID: 2, SubadminID: 3, Label: domain.FeedbackGood}))
	err := fb.Create(ctx, &domain.Feedback{ComplaintID: 1, UserID: 2, SubadminID: 3, Label: domain.FeedbackPoor})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
