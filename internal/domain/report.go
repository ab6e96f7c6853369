package domain

import "time"

// UserSummary counts a user's complaints.
type UserSummary struct {
	Total      int64
	Resolved   int64
	Unresolved int64
	ThisMonth  int64
}

// SubadminSummary feeds the subadmin dashboard.
type SubadminSummary struct {
	TotalSolved      int64
	Uncategorized    int64
	TotalAssigned    int64
	TotalCategorized int64
}

// CategoryCount is a complaint count per main issue.
type CategoryCount struct {
	MainIssueID int64
	Name        string
	Count       int64
}

// AdminSummary feeds the admin dashboard.
type AdminSummary struct {
	TotalComplaints    int64
	Pending            int64
	Resolved           int64
	AIResolved         int64
	ResolvedBySubadmin int64
	HighPriority       int64
	Minor              int64
	Major              int64
	AvgResolutionHours float64
	TotalUsers         int64
	TotalSubadmins     int64
	Categories         []CategoryCount
	FeedbackByLabel    map[FeedbackLabel]int64
}

// SubadminPerformance is a per-subadmin rollup of closed complaints.
type SubadminPerformance struct {
	SubadminID  int64
	Name        string
	StaffNo     string
	TotalSolved int64
	AvgHours    float64
}

// RepeatedComplaint counts complaints one user filed under the same category.
// Category names are empty when the level was never set.
type RepeatedComplaint struct {
	UserID          int64
	StaffNo         string
	UserName        string
	MainIssue       string
	RelatedIssue    string
	SubRelatedIssue string
	Count           int64
}

// Complainer ranks a user by how often they file complaints.
type Complainer struct {
	UserID          int64
	StaffNo         string
	Name            string
	TotalComplaints int64
	ActiveDays      int64
	AvgPerDay       float64
	FirstComplaint  time.Time
	LastComplaint   time.Time
}

// TimelineDay is the number of complaints a user filed on one UTC calendar day.
type TimelineDay struct {
	Day   time.Time
	Count int64
}

// UserComplaintSummary is one row of the admin user overview.
type UserComplaintSummary struct {
	UserID          int64
	StaffNo         string
	Name            string
	Department      string
	Total           int64
	Resolved        int64
	Pending         int64
	LastComplaintAt *time.Time
}
