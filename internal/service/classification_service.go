package service

import (
	"context"
	"strings"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// SolutionSet is the description and ordered steps attached to a sub-related issue.
type SolutionSet struct {
	IssueDescription *domain.IssueDescription
	Solutions        []domain.SolutionStep
}

// ClassificationService exposes the fuzzy classifier and the cached taxonomy to users.
type ClassificationService struct {
	classifier *classifier.Classifier
	taxonomy   classifier.Taxonomy
}

// ClassificationDependencies bundles collaborators.
type ClassificationDependencies struct {
	Classifier *classifier.Classifier
	Taxonomy   classifier.Taxonomy
}

// NewClassificationService creates the service.
func NewClassificationService(deps ClassificationDependencies) *ClassificationService {
	return &ClassificationService{
		classifier: deps.Classifier,
		taxonomy:   deps.Taxonomy,
	}
}

// Classify categorizes a description. Unmatched text comes back as "Others".
func (s *ClassificationService) Classify(ctx context.Context, description string) (*domain.Classification, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	result, err := s.classifier.Classify(ctx, description)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return result, nil
}

// GetSolutionsFor returns the first description of a sub-related issue with its steps.
// A sub-related issue without content yields an empty set.
func (s *ClassificationService) GetSolutionsFor(ctx context.Context, subRelatedIssueID int64) (*SolutionSet, error) {
	desc, steps, err := s.classifier.Solutions(ctx, subRelatedIssueID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &SolutionSet{IssueDescription: desc, Solutions: steps}, nil
}

// MainIssues lists the top level of the taxonomy.
func (s *ClassificationService) MainIssues(ctx context.Context) ([]domain.IssueNode, error) {
	nodes, err := s.taxonomy.MainIssues(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return nodes, nil
}

// RelatedIssues lists related issues, optionally under one main issue.
func (s *ClassificationService) RelatedIssues(ctx context.Context, mainIssueID *int64) ([]domain.IssueNode, error) {
	nodes, err := s.taxonomy.RelatedIssues(ctx, mainIssueID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return nodes, nil
}

// SubRelatedIssues lists sub-related issues, optionally under one related issue.
func (s *ClassificationService) SubRelatedIssues(ctx context.Context, relatedIssueID *int64) ([]domain.IssueNode, error) {
	nodes, err := s.taxonomy.SubRelatedIssues(ctx, relatedIssueID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return nodes, nil
}
