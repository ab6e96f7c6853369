package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// TaxonomyRepository persists the issue tree, its descriptions and solution steps.
type TaxonomyRepository interface {
	ListNodes(ctx context.Context, level domain.IssueLevel, parentID *int64) ([]domain.IssueNode, error)
	GetNode(ctx context.Context, level domain.IssueLevel, id int64) (*domain.IssueNode, error)
	FindNodeByName(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error)
	// GetOrInsertNode returns the node named name under parentID, creating it when absent.
	GetOrInsertNode(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error)
	RenameNode(ctx context.Context, level domain.IssueLevel, id int64, name string) error
	DeleteNode(ctx context.Context, level domain.IssueLevel, id int64) error

	FirstDescription(ctx context.Context, subRelatedIssueID int64) (*domain.IssueDescription, error)
	GetDescription(ctx context.Context, id int64) (*domain.IssueDescription, error)
	CreateDescription(ctx context.Context, description *domain.IssueDescription) error
	UpdateDescription(ctx context.Context, id int64, text string) error
	DeleteDescription(ctx context.Context, id int64) error
	ListSteps(ctx context.Context, descriptionID int64) ([]domain.SolutionStep, error)
	UpsertStep(ctx context.Context, step *domain.SolutionStep) error
	DeleteStep(ctx context.Context, descriptionID int64, stepNumber int) error
}

type levelTable struct {
	table     string
	parentCol string
}

var levelTables = map[domain.IssueLevel]levelTable{
	domain.IssueLevelMain:       {table: "main_issues"},
	domain.IssueLevelRelated:    {table: "related_issues", parentCol: "main_issue_id"},
	domain.IssueLevelSubRelated: {table: "sub_related_issues", parentCol: "related_issue_id"},
}

func tableFor(level domain.IssueLevel) (levelTable, error) {
	lt, ok := levelTables[level]
	if !ok {
		return levelTable{}, fmt.Errorf("unknown issue level %q", level)
	}
	return lt, nil
}

func (lt levelTable) columns() string {
	parent := "NULL::bigint"
	if lt.parentCol != "" {
		parent = lt.parentCol
	}
	return "id, " + parent + ", name, created_at"
}

type taxonomyRepository struct {
	db DBTX
}

// NewTaxonomyRepository instantiates the repository.
func NewTaxonomyRepository(db DBTX) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

func (r *taxonomyRepository) ListNodes(ctx context.Context, level domain.IssueLevel, parentID *int64) ([]domain.IssueNode, error) {
	lt, err := tableFor(level)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s`, lt.columns(), lt.table)
	args := []any{}
	if parentID != nil && lt.parentCol != "" {
		args = append(args, *parentID)
		query += fmt.Sprintf(` WHERE %s=$1`, lt.parentCol)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.IssueNode
	for rows.Next() {
		node := domain.IssueNode{Level: level}
		if err := rows.Scan(&node.ID, &node.ParentID, &node.Name, &node.CreatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (r *taxonomyRepository) GetNode(ctx context.Context, level domain.IssueLevel, id int64) (*domain.IssueNode, error) {
	lt, err := tableFor(level)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1`, lt.columns(), lt.table)
	return scanNode(r.db.QueryRow(ctx, query, id), level)
}

func (r *taxonomyRepository) FindNodeByName(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error) {
	lt, err := tableFor(level)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(name)=lower($1)`, lt.columns(), lt.table)
	args := []any{strings.TrimSpace(name)}
	if lt.parentCol != "" {
		if parentID == nil {
			return nil, fmt.Errorf("%s lookup requires a parent", level)
		}
		args = append(args, *parentID)
		query += fmt.Sprintf(` AND %s=$2`, lt.parentCol)
	}
	return scanNode(r.db.QueryRow(ctx, query, args...), level)
}

func (r *taxonomyRepository) GetOrInsertNode(ctx context.Context, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error) {
	lt, err := tableFor(level)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	node, err := r.insertOrSelectNode(ctx, lt, level, parentID, name)
	if errors.Is(err, pgx.ErrNoRows) {
		// A concurrent insert committed after this statement's snapshot was taken.
		// A fresh statement sees the winner's row.
		return r.FindNodeByName(ctx, level, parentID, name)
	}
	return node, err
}

func (r *taxonomyRepository) insertOrSelectNode(ctx context.Context, lt levelTable, level domain.IssueLevel, parentID *int64, name string) (*domain.IssueNode, error) {
	if lt.parentCol == "" {
		query := fmt.Sprintf(`
        WITH ins AS (
            INSERT INTO %[1]s (name) VALUES ($1)
            ON CONFLICT (lower(name)) DO NOTHING
            RETURNING %[2]s
        )
        SELECT %[2]s FROM ins
        UNION ALL
        SELECT %[2]s FROM %[1]s WHERE lower(name)=lower($1)
        LIMIT 1`, lt.table, lt.columns())
		return scanNode(r.db.QueryRow(ctx, query, name), level)
	}

	if parentID == nil {
		return nil, fmt.Errorf("%s insert requires a parent", level)
	}
	query := fmt.Sprintf(`
        WITH ins AS (
            INSERT INTO %[1]s (%[3]s, name) VALUES ($1, $2)
            ON CONFLICT (%[3]s, lower(name)) DO NOTHING
            RETURNING %[2]s
        )
        SELECT %[2]s FROM ins
        UNION ALL
        SELECT %[2]s FROM %[1]s WHERE %[3]s=$1 AND lower(name)=lower($2)
        LIMIT 1`, lt.table, lt.columns(), lt.parentCol)
	return scanNode(r.db.QueryRow(ctx, query, *parentID, name), level)
}

func (r *taxonomyRepository) RenameNode(ctx context.Context, level domain.IssueLevel, id int64, name string) error {
	lt, err := tableFor(level)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET name=$1 WHERE id=$2`, lt.table)
	cmd, err := r.db.Exec(ctx, query, strings.TrimSpace(name), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taxonomyRepository) DeleteNode(ctx context.Context, level domain.IssueLevel, id int64) error {
	lt, err := tableFor(level)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, lt.table)
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taxonomyRepository) FirstDescription(ctx context.Context, subRelatedIssueID int64) (*domain.IssueDescription, error) {
	const query = `
        SELECT id, sub_related_issue_id, description, created_at
        FROM issue_descriptions WHERE sub_related_issue_id=$1
        ORDER BY id LIMIT 1`
	return scanDescription(r.db.QueryRow(ctx, query, subRelatedIssueID))
}

func (r *taxonomyRepository) GetDescription(ctx context.Context, id int64) (*domain.IssueDescription, error) {
	const query = `
        SELECT id, sub_related_issue_id, description, created_at
        FROM issue_descriptions WHERE id=$1`
	return scanDescription(r.db.QueryRow(ctx, query, id))
}

func (r *taxonomyRepository) CreateDescription(ctx context.Context, description *domain.IssueDescription) error {
	const query = `
        INSERT INTO issue_descriptions (sub_related_issue_id, description)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, description.SubRelatedIssueID, description.Text).
		Scan(&description.ID, &description.CreatedAt)
}

func (r *taxonomyRepository) UpdateDescription(ctx context.Context, id int64, text string) error {
	const query = `UPDATE issue_descriptions SET description=$1 WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, text, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taxonomyRepository) DeleteDescription(ctx context.Context, id int64) error {
	// issue_solutions rows cascade with their description.
	const query = `DELETE FROM issue_descriptions WHERE id=$1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taxonomyRepository) ListSteps(ctx context.Context, descriptionID int64) ([]domain.SolutionStep, error) {
	const query = `
        SELECT id, issue_description_id, step_number, step_instruction
        FROM issue_solutions WHERE issue_description_id=$1
        ORDER BY step_number`
	rows, err := r.db.Query(ctx, query, descriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []domain.SolutionStep
	for rows.Next() {
		var step domain.SolutionStep
		if err := rows.Scan(&step.ID, &step.IssueDescriptionID, &step.StepNumber, &step.Instruction); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (r *taxonomyRepository) UpsertStep(ctx context.Context, step *domain.SolutionStep) error {
	const query = `
        INSERT INTO issue_solutions (issue_description_id, step_number, step_instruction)
        VALUES ($1,$2,$3)
        ON CONFLICT (issue_description_id, step_number)
        DO UPDATE SET step_instruction=EXCLUDED.step_instruction
        RETURNING id`
	return r.db.QueryRow(ctx, query, step.IssueDescriptionID, step.StepNumber, step.Instruction).Scan(&step.ID)
}

func (r *taxonomyRepository) DeleteStep(ctx context.Context, descriptionID int64, stepNumber int) error {
	const query = `DELETE FROM issue_solutions WHERE issue_description_id=$1 AND step_number=$2`
	cmd, err := r.db.Exec(ctx, query, descriptionID, stepNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanNode(row pgx.Row, level domain.IssueLevel) (*domain.IssueNode, error) {
	node := domain.IssueNode{Level: level}
	if err := row.Scan(&node.ID, &node.ParentID, &node.Name, &node.CreatedAt); err != nil {
		return nil, err
	}
	return &node, nil
}

func scanDescription(row pgx.Row) (*domain.IssueDescription, error) {
	var description domain.IssueDescription
	if err := row.Scan(&description.ID, &description.SubRelatedIssueID, &description.Text, &description.CreatedAt); err != nil {
		return nil, err
	}
	return &description, nil
}
