package handlers

import (
	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

func issueNode(n domain.IssueNode) dto.IssueNodeResponse {
	return dto.IssueNodeResponse{ID: n.ID, Name: n.Name, ParentID: n.ParentID}
}

func issueNodes(nodes []domain.IssueNode) []dto.IssueNodeResponse {
	out := make([]dto.IssueNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, issueNode(n))
	}
	return out
}

func descriptionResponse(d *domain.IssueDescription) *dto.DescriptionResponse {
	if d == nil {
		return nil
	}
	return &dto.DescriptionResponse{ID: d.ID, SubRelatedIssueID: d.SubRelatedIssueID, Text: d.Text}
}

func solutionSteps(steps []domain.SolutionStep) []dto.SolutionStepResponse {
	out := make([]dto.SolutionStepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, dto.SolutionStepResponse{StepNumber: s.StepNumber, Instruction: s.Instruction})
	}
	return out
}

func classificationResponse(c *domain.Classification) dto.ClassificationResponse {
	return dto.ClassificationResponse{
		MainIssue:         dto.IssueNodeResponse{ID: c.MainIssueID, Name: c.MainIssueName},
		RelatedIssue:      dto.IssueNodeResponse{ID: c.RelatedIssueID, Name: c.RelatedIssueName},
		SubRelatedIssueID: c.SubRelatedIssueID,
		SubRelatedIssues:  issueNodes(c.SubRelatedIssueCandidates),
		IssueDescription:  descriptionResponse(c.IssueDescription),
		Solutions:         solutionSteps(c.SolutionSteps),
		Uncategorized:     c.IsUncategorized(),
	}
}

func feedbackResponse(f *domain.Feedback) *dto.FeedbackResponse {
	if f == nil {
		return nil
	}
	return &dto.FeedbackResponse{
		ID:          f.ID,
		ComplaintID: f.ComplaintID,
		SubadminID:  f.SubadminID,
		Label:       f.Label,
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
	}
}

func complaintResponse(c *domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:                     c.ID,
		Description:            c.Description,
		Status:                 c.Status,
		Priority:               c.Priority,
		Severity:               c.Severity,
		MainIssueID:            c.MainIssueID,
		RelatedIssueID:         c.RelatedIssueID,
		SubRelatedIssueID:      c.SubRelatedIssueID,
		FinalSubRelatedIssueID: c.FinalSubRelatedIssueID,
		AssignedToID:           c.AssignedToID,
		DoneByID:               c.DoneByID,
		IsAIResolved:           c.IsAIResolved,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func complaintViewResponse(v service.ComplaintView) dto.ComplaintResponse {
	resp := complaintResponse(&v.Complaint)
	resp.MainIssue = v.MainIssue
	resp.RelatedIssue = v.RelatedIssue
	resp.SubRelatedIssue = v.SubRelatedIssue
	resp.AssignedTo = v.AssignedTo
	resp.DoneBy = v.DoneBy
	resp.IssueDescription = v.IssueDescription
	resp.SolutionSteps = v.SolutionSteps
	resp.DirectSolution = v.DirectSolution
	resp.Feedback = feedbackResponse(v.Feedback)
	return resp
}

func complaintViews(views []service.ComplaintView) []dto.ComplaintResponse {
	out := make([]dto.ComplaintResponse, 0, len(views))
	for _, v := range views {
		out = append(out, complaintViewResponse(v))
	}
	return out
}
