package domain

import "time"

// OthersIssueID is the reserved "Others" node at main and related level.
const OthersIssueID int64 = 1

// OthersIssueName is the display name of the sentinel node.
const OthersIssueName = "Others"

// IssueLevel identifies a depth in the issue taxonomy.
type IssueLevel string

const (
	IssueLevelMain       IssueLevel = "main"
	IssueLevelRelated    IssueLevel = "related"
	IssueLevelSubRelated IssueLevel = "sub_related"
)

// Valid reports whether the level is one of the three taxonomy depths.
func (l IssueLevel) Valid() bool {
	switch l {
	case IssueLevelMain, IssueLevelRelated, IssueLevelSubRelated:
		return true
	}
	return false
}

// HasParent reports whether nodes at this level belong to a parent node.
func (l IssueLevel) HasParent() bool {
	return l == IssueLevelRelated || l == IssueLevelSubRelated
}

// Parent returns the level of the parent node.
func (l IssueLevel) Parent() IssueLevel {
	switch l {
	case IssueLevelSubRelated:
		return IssueLevelRelated
	case IssueLevelRelated:
		return IssueLevelMain
	}
	return ""
}

// IssueNode is one node of the taxonomy: a main, related or sub-related issue.
// Name is unique within ParentID.
type IssueNode struct {
	ID        int64
	Level     IssueLevel
	Name      string
	ParentID  *int64
	CreatedAt time.Time
}

// IsSentinel reports whether the node is the reserved "Others" node.
func (n IssueNode) IsSentinel() bool {
	return n.ID == OthersIssueID && n.Level != IssueLevelSubRelated
}

// IssueDescription elaborates a sub-related issue.
type IssueDescription struct {
	ID                int64
	SubRelatedIssueID int64
	Text              string
	CreatedAt         time.Time
}

// SolutionStep is one ordered instruction of an issue description.
type SolutionStep struct {
	ID                 int64
	IssueDescriptionID int64
	StepNumber         int
	Instruction        string
}
