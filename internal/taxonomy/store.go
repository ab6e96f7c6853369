// Package taxonomy serves the three issue levels to the classifier and the API
// through a short-lived read cache.
package taxonomy

import (
	"context"
	"slices"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// DefaultTTL is how long a level listing is served from memory.
const DefaultTTL = 10 * time.Second

type cacheKey struct {
	level     domain.IssueLevel
	parentID  int64
	hasParent bool
}

// Store reads taxonomy levels through a TTL cache. Writes to the taxonomy
// become visible once the cached listing expires.
type Store struct {
	repo  repository.TaxonomyRepository
	cache *TTLCache[cacheKey, []domain.IssueNode]
}

// Config tunes the cache.
type Config struct {
	TTL   time.Duration
	Clock func() time.Time
}

// NewStore builds a taxonomy store.
func NewStore(repo repository.TaxonomyRepository, cfg Config) *Store {
	return &Store{
		repo:  repo,
		cache: NewTTLCache[cacheKey, []domain.IssueNode](cfg.TTL, cfg.Clock),
	}
}

// MainIssues lists every main issue, the "Others" sentinel included.
func (s *Store) MainIssues(ctx context.Context) ([]domain.IssueNode, error) {
	return s.list(ctx, domain.IssueLevelMain, nil)
}

// RelatedIssues lists related issues, optionally limited to one main issue.
func (s *Store) RelatedIssues(ctx context.Context, mainIssueID *int64) ([]domain.IssueNode, error) {
	return s.list(ctx, domain.IssueLevelRelated, mainIssueID)
}

// SubRelatedIssues lists sub-related issues, optionally limited to one related issue.
func (s *Store) SubRelatedIssues(ctx context.Context, relatedIssueID *int64) ([]domain.IssueNode, error) {
	return s.list(ctx, domain.IssueLevelSubRelated, relatedIssueID)
}

func (s *Store) list(ctx context.Context, level domain.IssueLevel, parentID *int64) ([]domain.IssueNode, error) {
	key := cacheKey{level: level}
	if parentID != nil {
		key.parentID = *parentID
		key.hasParent = true
	}
	nodes, err := s.cache.GetOrLoad(key, func() ([]domain.IssueNode, error) {
		return s.repo.ListNodes(ctx, level, parentID)
	})
	if err != nil {
		return nil, err
	}
	// callers get their own slice so they cannot corrupt the cached one
	return slices.Clone(nodes), nil
}
