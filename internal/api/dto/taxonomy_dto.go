package dto

// IssueNodeResponse is one taxonomy node.
type IssueNodeResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// DescriptionResponse is an issue description.
type DescriptionResponse struct {
	ID                int64  `json:"id"`
	SubRelatedIssueID int64  `json:"sub_related_issue_id"`
	Text              string `json:"text"`
}

// SolutionStepResponse is one numbered instruction.
type SolutionStepResponse struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
}

// SolutionSetResponse is a description with its ordered steps.
type SolutionSetResponse struct {
	IssueDescription *DescriptionResponse   `json:"issue_description"`
	Solutions        []SolutionStepResponse `json:"solutions"`
}

// CreateNodeRequest payload. parent_id is required below the main level.
type CreateNodeRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

// RenameNodeRequest payload.
type RenameNodeRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// DescriptionRequest payload.
type DescriptionRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// StepRequest payload.
type StepRequest struct {
	Instruction string `json:"instruction" validate:"required,max=1000"`
}

// ImportReportResponse counts what a hierarchy import created.
type ImportReportResponse struct {
	InsertedMain         int `json:"inserted_main"`
	InsertedRelated      int `json:"inserted_related"`
	InsertedSubRelated   int `json:"inserted_sub_related"`
	InsertedDescriptions int `json:"inserted_descriptions"`
	InsertedSolutions    int `json:"inserted_solutions"`
	Skipped              int `json:"skipped"`
}
