package models

import "time"

// Contact is an address book entry. It is always owned by exactly one user
// and is only ever read through that user's id.
type Contact struct {
	ID        int64
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactFilter narrows a contact listing. Empty fields do not filter.
// Name matches either the first or the last name.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
	Name      string
	Limit     int
	Offset    int
}

// UpcomingBirthday is a contact whose birthday falls inside the requested
// window, with the date it occurs on and the weekday it should be celebrated.
type UpcomingBirthday struct {
	Contact          Contact
	NextBirthday     time.Time
	CongratulationOn time.Time
}
