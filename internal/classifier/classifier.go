// Package classifier maps free-text complaint descriptions onto the issue taxonomy.
package classifier

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Taxonomy lists the issue levels. *taxonomy.Store satisfies it.
type Taxonomy interface {
	MainIssues(ctx context.Context) ([]domain.IssueNode, error)
	RelatedIssues(ctx context.Context, mainIssueID *int64) ([]domain.IssueNode, error)
	SubRelatedIssues(ctx context.Context, relatedIssueID *int64) ([]domain.IssueNode, error)
}

// SolutionSource loads the description and steps attached to a sub-related issue.
type SolutionSource interface {
	FirstDescription(ctx context.Context, subRelatedIssueID int64) (*domain.IssueDescription, error)
	ListSteps(ctx context.Context, descriptionID int64) ([]domain.SolutionStep, error)
}

// Config tunes matching.
type Config struct {
	Threshold float64
	Rules     []OverrideRule
}

// Classifier produces a best-effort categorization. A description that matches
// nothing is classified as "Others"; only storage failures are returned as errors.
type Classifier struct {
	taxonomy  Taxonomy
	solutions SolutionSource
	matcher   Matcher
	rules     []OverrideRule
	sanitizer *Sanitizer
	logger    *zap.Logger
}

// New builds a classifier. A nil rule list means DefaultRules.
func New(taxonomy Taxonomy, solutions SolutionSource, logger *zap.Logger, cfg Config) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{
		taxonomy:  taxonomy,
		solutions: solutions,
		matcher:   NewMatcher(cfg.Threshold),
		rules:     rules,
		sanitizer: NewSanitizer(),
		logger:    logger,
	}
}

// Classify matches description against related issues, derives the main issue
// from the match and then narrows down to a sub-related issue.
func (c *Classifier) Classify(ctx context.Context, description string) (*domain.Classification, error) {
	text := strings.ToLower(c.sanitizer.Clean(description))

	mains, err := c.taxonomy.MainIssues(ctx)
	if err != nil {
		return nil, err
	}
	related, err := c.taxonomy.RelatedIssues(ctx, nil)
	if err != nil {
		return nil, err
	}
	subs, err := c.taxonomy.SubRelatedIssues(ctx, nil)
	if err != nil {
		return nil, err
	}

	result := &domain.Classification{
		MainIssueID:      domain.OthersIssueID,
		MainIssueName:    domain.OthersIssueName,
		RelatedIssueID:   domain.OthersIssueID,
		RelatedIssueName: domain.OthersIssueName,
	}

	var children []domain.IssueNode
	if idx, ok := c.matcher.BestMatch(text, names(related)); ok {
		children = c.adoptRelated(result, related[idx], mains, subs)
		if idx, ok := c.matcher.BestMatch(text, names(children)); ok {
			result.SubRelatedIssueID = &children[idx].ID
		} else if node, ok := applyRules(c.rules, text, children); ok {
			result.SubRelatedIssueID = &node.ID
		}
	}

	if result.RelatedIssueID == domain.OthersIssueID {
		children = c.fallBackToOthers(result, related, subs)
	}

	if result.RelatedIssueID != domain.OthersIssueID && result.SubRelatedIssueID == nil && len(children) == 1 {
		result.SubRelatedIssueID = &children[0].ID
	}
	if result.SubRelatedIssueID == nil && result.RelatedIssueID != domain.OthersIssueID {
		c.logger.Warn("no sub-related issue match found",
			zap.String("description", text),
			zap.Int64("related_issue_id", result.RelatedIssueID),
			zap.Int("candidates", len(children)))
	}

	if result.SubRelatedIssueID != nil {
		desc, steps, err := c.Solutions(ctx, *result.SubRelatedIssueID)
		if err != nil {
			return nil, err
		}
		result.IssueDescription = desc
		result.SolutionSteps = steps
	}

	c.logger.Info("classification completed",
		zap.Int64("main_issue_id", result.MainIssueID),
		zap.Int64("related_issue_id", result.RelatedIssueID),
		zap.Bool("has_sub_related_issue", result.SubRelatedIssueID != nil))
	return result, nil
}

// Solutions returns the first description of a sub-related issue and its ordered steps.
// A sub-related issue without a description yields nil and no error.
func (c *Classifier) Solutions(ctx context.Context, subRelatedIssueID int64) (*domain.IssueDescription, []domain.SolutionStep, error) {
	desc, err := c.solutions.FirstDescription(ctx, subRelatedIssueID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, []domain.SolutionStep{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	steps, err := c.solutions.ListSteps(ctx, desc.ID)
	if err != nil {
		return nil, nil, err
	}
	if steps == nil {
		steps = []domain.SolutionStep{}
	}
	return desc, steps, nil
}

// adoptRelated records the related issue and its parent, returning the related issue's children.
func (c *Classifier) adoptRelated(result *domain.Classification, node domain.IssueNode, mains, subs []domain.IssueNode) []domain.IssueNode {
	result.RelatedIssueID = node.ID
	result.RelatedIssueName = node.Name
	result.MainIssueID = domain.OthersIssueID
	result.MainIssueName = domain.OthersIssueName
	if node.ParentID != nil {
		result.MainIssueID = *node.ParentID
		if main, ok := findByID(mains, *node.ParentID); ok {
			result.MainIssueName = main.Name
		}
	}
	children := childrenOf(subs, node.ID)
	result.SubRelatedIssueCandidates = children
	return children
}

// fallBackToOthers files the result under the sentinel and offers the children of the
// "Others" related issue as suggestions. Override rules are not consulted here.
func (c *Classifier) fallBackToOthers(result *domain.Classification, related, subs []domain.IssueNode) []domain.IssueNode {
	result.MainIssueID = domain.OthersIssueID
	result.MainIssueName = domain.OthersIssueName
	result.RelatedIssueID = domain.OthersIssueID
	result.RelatedIssueName = domain.OthersIssueName
	if node, ok := findByID(related, domain.OthersIssueID); ok {
		result.RelatedIssueName = node.Name
	}
	result.SubRelatedIssueID = nil
	result.SubRelatedIssueCandidates = childrenOf(subs, domain.OthersIssueID)
	return result.SubRelatedIssueCandidates
}

func names(nodes []domain.IssueNode) []string {
	out := make([]string, len(nodes))
	for i, node := range nodes {
		out[i] = node.Name
	}
	return out
}

func childrenOf(nodes []domain.IssueNode, parentID int64) []domain.IssueNode {
	children := []domain.IssueNode{}
	for _, node := range nodes {
		if node.ParentID != nil && *node.ParentID == parentID {
			children = append(children, node)
		}
	}
	return children
}

func findByID(nodes []domain.IssueNode, id int64) (domain.IssueNode, bool) {
	for _, node := range nodes {
		if node.ID == id {
			return node, true
		}
	}
	return domain.IssueNode{}, false
}
