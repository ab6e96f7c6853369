package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type taxonomyRepo struct {
	*view
}

func (r *taxonomyRepo) ListNodes(ctx context.Context, level domain.IssueLevel, parentID *int64) ([]domain.IssueNode, error) {
	var nodes []domain.IssueNode
	err := r.do(ctx, func(d *dataset) error {
		table, ok := d.nodes[level]
		if !ok {
			return fmt.Errorf("unknown issue level %q", level)
		}
		for _, node := range table {
			if parentID != nil && level.HasParent() && (node.ParentID == nil || *node.ParentID != *parentID) {
				continue
			}
			nodes = append(nodes, copyNode(node))
		}
		return nil
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, err
}

func (r *taxonomyRepo) GetNode(ctx context.Context, level domain.IssueLevel, id int64) (*domain.IssueNode, error) {
	var out *domain.IssueNode
	err := r.do(ctx, func(d *dataset) error {
		node, ok := d.nodes[level][id]
		if !ok {
			return pgx.ErrNoRows
		}
		n := copyNode(node)
		out = &n
		return nil
	})
	return out, err
}

func (r *taxonomyRepo) FindNodeByName(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error) {
	var out *domain.IssueNode
	err := r.do(ctx, func(d *dataset) error {
		if level.HasParent() && parentID == nil {
			return fmt.Errorf("%s lookup requires a parent", level)
		}
		node, ok := d.findNode(level, parentID, name)
		if !ok {
			return pgx.ErrNoRows
		}
		n := copyNode(node)
		out = &n
		return nil
	})
	return out, err
}

func (r *taxonomyRepo) GetOrInsertNode(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error) {
	var out *domain.IssueNode
	err := r.do(ctx, func(d *dataset) error {
		if _, ok := d.nodes[level]; !ok {
			return fmt.Errorf("unknown issue level %q", level)
		}
		if level.HasParent() {
			if parentID == nil {
				return fmt.Errorf("%s insert requires a parent", level)
			}
			if _, ok := d.nodes[level.Parent()][*parentID]; !ok {
				return fmt.Errorf("%s parent %d does not exist", level, *parentID)
			}
		}
		if node, ok := d.findNode(level, parentID, name); ok {
			n := copyNode(node)
			out = &n
			return nil
		}
		node := domain.IssueNode{
			ID:        d.nextID(tableOf(level)),
			Level:     level,
			Name:      strings.TrimSpace(name),
			CreatedAt: r.now(),
		}
		if level.HasParent() {
			node.ParentID = clonePtr(parentID)
		}
		d.nodes[level][node.ID] = node
		n := copyNode(node)
		out = &n
		return nil
	})
	return out, err
}

func (r *taxonomyRepo) RenameNode(ctx context.Context, level domain.IssueLevel, id int64, name string) error {
	return r.do(ctx, func(d *dataset) error {
		node, ok := d.nodes[level][id]
		if !ok {
			return pgx.ErrNoRows
		}
		if other, exists := d.findNode(level, node.ParentID, name); exists && other.ID != id {
			return repository.ErrDuplicate
		}
		node.Name = strings.TrimSpace(name)
		d.nodes[level][id] = node
		return nil
	})
}

func (r *taxonomyRepo) DeleteNode(ctx context.Context, level domain.IssueLevel, id int64) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.nodes[level][id]; !ok {
			return pgx.ErrNoRows
		}
		if d.nodeReferenced(level, id) {
			return repository.ErrReferenced
		}
		delete(d.nodes[level], id)
		return nil
	})
}

func (r *taxonomyRepo) FirstDescription(ctx context.Context, subRelatedIssueID int64) (*domain.IssueDescription, error) {
	var out *domain.IssueDescription
	err := r.do(ctx, func(d *dataset) error {
		for _, desc := range d.descriptions {
			if desc.SubRelatedIssueID != subRelatedIssueID {
				continue
			}
			if out == nil || desc.ID < out.ID {
				dc := desc
				out = &dc
			}
		}
		if out == nil {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taxonomyRepo) GetDescription(ctx context.Context, id int64) (*domain.IssueDescription, error) {
	var out *domain.IssueDescription
	err := r.do(ctx, func(d *dataset) error {
		desc, ok := d.descriptions[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &desc
		return nil
	})
	return out, err
}

func (r *taxonomyRepo) CreateDescription(ctx context.Context, description *domain.IssueDescription) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.nodes[domain.IssueLevelSubRelated][description.SubRelatedIssueID]; !ok {
			return fmt.Errorf("sub-related issue %d does not exist", description.SubRelatedIssueID)
		}
		description.ID = d.nextID("issue_descriptions")
		description.CreatedAt = r.now()
		d.descriptions[description.ID] = *description
		return nil
	})
}

func (r *taxonomyRepo) UpdateDescription(ctx context.Context, id int64, text string) error {
	return r.do(ctx, func(d *dataset) error {
		desc, ok := d.descriptions[id]
		if !ok {
			return pgx.ErrNoRows
		}
		desc.Text = text
		d.descriptions[id] = desc
		return nil
	})
}

func (r *taxonomyRepo) DeleteDescription(ctx context.Context, id int64) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.descriptions[id]; !ok {
			return pgx.ErrNoRows
		}
		for _, c := range d.complaints {
			if c.IssueDescriptionID != nil && *c.IssueDescriptionID == id {
				return repository.ErrReferenced
			}
		}
		for stepID, step := range d.steps {
			if step.IssueDescriptionID == id {
				delete(d.steps, stepID)
			}
		}
		delete(d.descriptions, id)
		return nil
	})
}

func (r *taxonomyRepo) ListSteps(ctx context.Context, descriptionID int64) ([]domain.SolutionStep, error) {
	var steps []domain.SolutionStep
	err := r.do(ctx, func(d *dataset) error {
		for _, step := range d.steps {
			if step.IssueDescriptionID == descriptionID {
				steps = append(steps, step)
			}
		}
		return nil
	})
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	return steps, err
}

func (r *taxonomyRepo) UpsertStep(ctx context.Context, step *domain.SolutionStep) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.descriptions[step.IssueDescriptionID]; !ok {
			return fmt.Errorf("issue description %d does not exist", step.IssueDescriptionID)
		}
		for id, existing := range d.steps {
			if existing.IssueDescriptionID == step.IssueDescriptionID && existing.StepNumber == step.StepNumber {
				existing.Instruction = step.Instruction
				d.steps[id] = existing
				step.ID = id
				return nil
			}
		}
		step.ID = d.nextID("issue_solutions")
		d.steps[step.ID] = *step
		return nil
	})
}

func (r *taxonomyRepo) DeleteStep(ctx context.Context, descriptionID int64, stepNumber int) error {
	return r.do(ctx, func(d *dataset) error {
		for id, step := range d.steps {
			if step.IssueDescriptionID == descriptionID && step.StepNumber == stepNumber {
				delete(d.steps, id)
				return nil
			}
		}
		return pgx.ErrNoRows
	})
}

func (d *dataset) findNode(level domain.IssueLevel, parentID *int64, name string) (domain.IssueNode, bool) {
	name = strings.TrimSpace(name)
	var found domain.IssueNode
	ok := false
	for _, node := range d.nodes[level] {
		if !strings.EqualFold(node.Name, name) {
			continue
		}
		if level.HasParent() && (node.ParentID == nil || parentID == nil || *node.ParentID != *parentID) {
			continue
		}
		if !ok || node.ID < found.ID {
			found, ok = node, true
		}
	}
	return found, ok
}

func (d *dataset) nodeReferenced(level domain.IssueLevel, id int64) bool {
	switch level {
	case domain.IssueLevelMain:
		for _, node := range d.nodes[domain.IssueLevelRelated] {
			if node.ParentID != nil && *node.ParentID == id {
				return true
			}
		}
	case domain.IssueLevelRelated:
		for _, node := range d.nodes[domain.IssueLevelSubRelated] {
			if node.ParentID != nil && *node.ParentID == id {
				return true
			}
		}
	case domain.IssueLevelSubRelated:
		for _, desc := range d.descriptions {
			if desc.SubRelatedIssueID == id {
				return true
			}
		}
	}
	for _, c := range d.complaints {
		var ref *int64
		switch level {
		case domain.IssueLevelMain:
			ref = c.MainIssueID
		case domain.IssueLevelRelated:
			ref = c.RelatedIssueID
		case domain.IssueLevelSubRelated:
			if c.FinalSubRelatedIssueID != nil && *c.FinalSubRelatedIssueID == id {
				return true
			}
			ref = c.SubRelatedIssueID
		}
		if ref != nil && *ref == id {
			return true
		}
	}
	return false
}

func copyNode(n domain.IssueNode) domain.IssueNode {
	n.ParentID = clonePtr(n.ParentID)
	return n
}
