package domain

// Classification is the fuzzy classifier's best-effort categorization of a description.
type Classification struct {
	MainIssueID               int64
	MainIssueName             string
	RelatedIssueID            int64
	RelatedIssueName          string
	SubRelatedIssueID         *int64
	SubRelatedIssueCandidates []IssueNode
	IssueDescription          *IssueDescription
	SolutionSteps             []SolutionStep
}

// IsUncategorized reports whether the classification fell back to the sentinel.
func (c *Classification) IsUncategorized() bool {
	return IsUncategorizedPair(c.MainIssueID, c.RelatedIssueID)
}
