package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintView is a complaint joined with the names and solution content shown in listings.
type ComplaintView struct {
	Complaint        domain.Complaint
	MainIssue        string
	RelatedIssue     string
	SubRelatedIssue  string
	AssignedTo       string
	DoneBy           string
	IssueDescription string
	SolutionSteps    []string
	DirectSolution   string
	Feedback         *domain.Feedback
}

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

// viewBuilder memoizes name lookups across one listing.
type viewBuilder struct {
	repos repository.Repositories
	nodes map[domain.IssueLevel]map[int64]string
	staff map[int64]string
	// maskOriginal shows "Others" for complaints that were submitted uncategorized.
	maskOriginal bool
}

func newViewBuilder(repos repository.Repositories) *viewBuilder {
	return &viewBuilder{
		repos: repos,
		nodes: map[domain.IssueLevel]map[int64]string{},
		staff: map[int64]string{},
	}
}

func (b *viewBuilder) nodeName(ctx context.Context, level domain.IssueLevel, id *int64) (string, error) {
	if id == nil {
		return "", nil
	}
	if b.nodes[level] == nil {
		b.nodes[level] = map[int64]string{}
	}
	if name, ok := b.nodes[level][*id]; ok {
		return name, nil
	}
	node, err := b.repos.Taxonomy.GetNode(ctx, level, *id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.Storage(err)
	}
	name := ""
	if node != nil {
		name = node.Name
	}
	b.nodes[level][*id] = name
	return name, nil
}

func (b *viewBuilder) staffName(ctx context.Context, id *int64) (string, error) {
	if id == nil {
		return "", nil
	}
	if name, ok := b.staff[*id]; ok {
		return name, nil
	}
	staff, err := b.repos.Staff.GetByID(ctx, *id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.Storage(err)
	}
	name := ""
	if staff != nil {
		name = staff.Name
	}
	b.staff[*id] = name
	return name, nil
}

func (b *viewBuilder) summary(ctx context.Context, c domain.Complaint) (ComplaintView, error) {
	view := ComplaintView{Complaint: c}
	var err error
	if b.maskOriginal && c.OriginalMainIssueID != nil && *c.OriginalMainIssueID == domain.OthersIssueID {
		view.MainIssue = domain.OthersIssueName
		view.RelatedIssue = domain.OthersIssueName
	} else {
		if view.MainIssue, err = b.nodeName(ctx, domain.IssueLevelMain, c.MainIssueID); err != nil {
			return view, err
		}
		if view.RelatedIssue, err = b.nodeName(ctx, domain.IssueLevelRelated, c.RelatedIssueID); err != nil {
			return view, err
		}
		sub := c.FinalSubRelatedIssueID
		if sub == nil {
			sub = c.SubRelatedIssueID
		}
		if view.SubRelatedIssue, err = b.nodeName(ctx, domain.IssueLevelSubRelated, sub); err != nil {
			return view, err
		}
	}
	if view.AssignedTo, err = b.staffName(ctx, c.AssignedToID); err != nil {
		return view, err
	}
	if view.DoneBy, err = b.staffName(ctx, c.DoneByID); err != nil {
		return view, err
	}
	return view, nil
}

// detailed adds the solution content and, when userID is set, that user's feedback.
func (b *viewBuilder) detailed(ctx context.Context, c domain.Complaint, userID *int64) (ComplaintView, error) {
	view, err := b.summary(ctx, c)
	if err != nil {
		return view, err
	}
	if c.IssueDescriptionID != nil {
		desc, err := b.repos.Taxonomy.GetDescription(ctx, *c.IssueDescriptionID)
		switch {
		case err == nil:
			view.IssueDescription = desc.Text
			steps, err := b.repos.Taxonomy.ListSteps(ctx, desc.ID)
			if err != nil {
				return view, apperrors.Storage(err)
			}
			for _, step := range steps {
				view.SolutionSteps = append(view.SolutionSteps, step.Instruction)
			}
		case !errors.Is(err, pgx.ErrNoRows):
			return view, apperrors.Storage(err)
		}
	}
	direct, err := b.repos.Reviews.GetDirectSolution(ctx, c.ID)
	switch {
	case err == nil:
		view.DirectSolution = direct.SolutionText
	case !errors.Is(err, pgx.ErrNoRows):
		return view, apperrors.Storage(err)
	}
	if userID != nil {
		feedback, err := b.repos.Feedback.GetByComplaint(ctx, c.ID, *userID)
		switch {
		case err == nil:
			view.Feedback = feedback
		case !errors.Is(err, pgx.ErrNoRows):
			return view, apperrors.Storage(err)
		}
	}
	return view, nil
}

func (b *viewBuilder) summaries(ctx context.Context, complaints []domain.Complaint) ([]ComplaintView, error) {
	views := make([]ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		view, err := b.summary(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
