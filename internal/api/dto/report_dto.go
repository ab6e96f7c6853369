package dto

import "time"

// RepeatedComplaintResponse is one user who raised the same issue more than once.
type RepeatedComplaintResponse struct {
	UserID          int64  `json:"user_id"`
	StaffNo         string `json:"staff_no"`
	UserName        string `json:"user_name"`
	MainIssue       string `json:"main_issue"`
	RelatedIssue    string `json:"related_issue"`
	SubRelatedIssue string `json:"sub_related_issue,omitempty"`
	Count           int64  `json:"count"`
}

// ComplainerResponse ranks a user by complaint volume.
type ComplainerResponse struct {
	UserID          int64     `json:"user_id"`
	StaffNo         string    `json:"staff_no"`
	Name            string    `json:"name"`
	TotalComplaints int64     `json:"total_complaints"`
	ActiveDays      int64     `json:"active_days"`
	AvgPerDay       float64   `json:"avg_per_day"`
	FirstComplaint  time.Time `json:"first_complaint"`
	LastComplaint   time.Time `json:"last_complaint"`
}

// TimelineDayResponse counts one user's complaints on a UTC day.
type TimelineDayResponse struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// UserComplaintSummaryResponse is a user row with complaint totals.
type UserComplaintSummaryResponse struct {
	UserID          int64      `json:"user_id"`
	StaffNo         string     `json:"staff_no"`
	Name            string     `json:"name"`
	Department      string     `json:"department"`
	Total           int64      `json:"total"`
	Resolved        int64      `json:"resolved"`
	Pending         int64      `json:"pending"`
	LastComplaintAt *time.Time `json:"last_complaint_at,omitempty"`
}

// AccountImportFailure reports one skipped workbook row.
type AccountImportFailure struct {
	Row     int    `json:"row"`
	StaffNo string `json:"staff_no,omitempty"`
	Reason  string `json:"reason"`
}

// AccountImportResponse summarizes a bulk account import.
type AccountImportResponse struct {
	Created int                    `json:"created"`
	Updated int                    `json:"updated"`
	Failed  []AccountImportFailure `json:"failed"`
}
