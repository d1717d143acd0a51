package models

// Streak counts consecutive calendar days the app was opened.
// LastActiveDate is a YYYY-MM-DD string; empty means never active.
type Streak struct {
	Count          int    `json:"count"`
	LastActiveDate string `json:"lastActiveDate"`
}
