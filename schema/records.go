package schema

import "time"

// MembershipCount is one row of the num-active extract.
type MembershipCount struct {
	Period         time.Time
	Country        string
	MembershipType MembershipType
	NumActive      int
}

// Application is a sitter's request to take an assignment.
type Application struct {
	SitterID        int64
	AssignmentID    int64
	DateCreated     time.Time
	LastModified    time.Time
	OwnerConfirmed  int
	SitterConfirmed int
	RequestID       *int64 // nil when the request id is missing
}

// IsAssignmentFilled reports whether both parties confirmed the application.
func (a Application) IsAssignmentFilled() bool {
	return a.OwnerConfirmed == 1 && a.SitterConfirmed == 1
}

// Sitter is one housesitter membership.
type Sitter struct {
	UserID         int64
	FirstStartDate time.Time
	StartDate      time.Time
	ExpiresDate    time.Time
	BillingCountry string
}

// Assignment is a sit posted by an owner. SitterID is nil until a sitter is confirmed.
type Assignment struct {
	ID          int64
	OwnerID     int64
	SitterID    *int64
	CreatedDate time.Time
	StartDate   time.Time
	EndDate     time.Time
}

// IsAssignmentFilled reports whether a sitter was confirmed for the assignment.
func (a Assignment) IsAssignmentFilled() bool {
	return a.SitterID != nil
}

// Owner is one homeowner membership.
type Owner struct {
	UserID         int64
	JoinedDate     time.Time
	FirstStartDate time.Time
	StartDate      time.Time
	ExpiresDate    time.Time
	PublishedDate  time.Time
	BillingCountry string
}

// Verification records when a member passed standard verification.
type Verification struct {
	UserID        int64
	StandardVerif time.Time
}

// Dataset holds every loaded table. It is read-only once returned by the loader.
type Dataset struct {
	Memberships   []MembershipCount
	Applications  []Application
	Sitters       []Sitter
	Assignments   []Assignment
	Owners        []Owner
	Verifications []Verification

	// Fingerprint identifies the source files (path, size, modification time).
	Fingerprint string
}

// Window is the reporting window. Both ends cover the whole calendar day.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on or after the start day and on or before the end day.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	start := truncateDay(w.Start)
	end := truncateDay(w.End).AddDate(0, 0, 1)
	return !t.Before(start) && t.Before(end)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
