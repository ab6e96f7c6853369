// Package memstore is an in-process implementation of every repository.
// Transactions are serialized and work on a copy that replaces the live data on commit.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store satisfies repository.Store without a database.
type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns a store seeded with the "Others" sentinel at main and related level.
func New(opts ...Option) *Store {
	s := &Store{data: newDataset(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	created := s.now()
	s.data.seq[tableOf(domain.IssueLevelMain)] = domain.OthersIssueID
	s.data.seq[tableOf(domain.IssueLevelRelated)] = domain.OthersIssueID
	s.data.nodes[domain.IssueLevelMain][domain.OthersIssueID] = domain.IssueNode{
		ID: domain.OthersIssueID, Level: domain.IssueLevelMain, Name: domain.OthersIssueName, CreatedAt: created,
	}
	parent := domain.OthersIssueID
	s.data.nodes[domain.IssueLevelRelated][domain.OthersIssueID] = domain.IssueNode{
		ID: domain.OthersIssueID, Level: domain.IssueLevelRelated, Name: domain.OthersIssueName, ParentID: &parent, CreatedAt: created,
	}
	return s
}

// Repos returns auto-committing repositories.
func (s *Store) Repos() repository.Repositories {
	return s.bind(nil)
}

// WithinTx runs fn against a private copy of the data and publishes it only when fn succeeds.
// Repositories from Repos must not be used inside fn.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.data.clone()
	if err := fn(ctx, s.bind(working)); err != nil {
		return err
	}
	s.data = working
	return nil
}

func (s *Store) bind(tx *dataset) repository.Repositories {
	v := &view{store: s, tx: tx}
	return repository.Repositories{
		Taxonomy:       &taxonomyRepo{v},
		Complaints:     &complaintRepo{v},
		Reviews:        &reviewRepo{v},
		Feedback:       &feedbackRepo{v},
		ResolutionLogs: &resolutionLogRepo{v},
		Users:          &userRepo{v},
		Staff:          &staffRepo{v},
		Reports:        &reportRepo{v},
	}
}

type view struct {
	store *Store
	tx    *dataset
}

func (v *view) do(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func (v *view) now() time.Time {
	return v.store.now()
}

type dataset struct {
	seq          map[string]int64
	nodes        map[domain.IssueLevel]map[int64]domain.IssueNode
	descriptions map[int64]domain.IssueDescription
	steps        map[int64]domain.SolutionStep
	complaints   map[int64]domain.Complaint
	reviews      map[int64]domain.PendingReview
	resolutions  map[int64]domain.UncategorizedResolution
	directs      map[int64]domain.DirectSolution
	feedback     map[int64]domain.Feedback
	logs         []domain.ResolutionLog
	users        map[int64]domain.User
	staff        map[int64]domain.StaffMember
}

func newDataset() *dataset {
	return &dataset{
		seq: map[string]int64{},
		nodes: map[domain.IssueLevel]map[int64]domain.IssueNode{
			domain.IssueLevelMain:       {},
			domain.IssueLevelRelated:    {},
			domain.IssueLevelSubRelated: {},
		},
		descriptions: map[int64]domain.IssueDescription{},
		steps:        map[int64]domain.SolutionStep{},
		complaints:   map[int64]domain.Complaint{},
		reviews:      map[int64]domain.PendingReview{},
		resolutions:  map[int64]domain.UncategorizedResolution{},
		directs:      map[int64]domain.DirectSolution{},
		feedback:     map[int64]domain.Feedback{},
		users:        map[int64]domain.User{},
		staff:        map[int64]domain.StaffMember{},
	}
}

// clone copies every table. Stored values never share mutable pointers with callers,
// so copying the maps is enough.
func (d *dataset) clone() *dataset {
	nodes := make(map[domain.IssueLevel]map[int64]domain.IssueNode, len(d.nodes))
	for level, m := range d.nodes {
		nodes[level] = maps.Clone(m)
	}
	return &dataset{
		seq:          maps.Clone(d.seq),
		nodes:        nodes,
		descriptions: maps.Clone(d.descriptions),
		steps:        maps.Clone(d.steps),
		complaints:   maps.Clone(d.complaints),
		reviews:      maps.Clone(d.reviews),
		resolutions:  maps.Clone(d.resolutions),
		directs:      maps.Clone(d.directs),
		feedback:     maps.Clone(d.feedback),
		logs:         append([]domain.ResolutionLog(nil), d.logs...),
		users:        maps.Clone(d.users),
		staff:        maps.Clone(d.staff),
	}
}

func (d *dataset) nextID(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

func tableOf(level domain.IssueLevel) string {
	return "issues_" + string(level)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
