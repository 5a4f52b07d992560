package domain

import "time"

// Member is the domain representation of a club member.
//
// BirthDate and CreateDate are calendar dates: their time-of-day component
// is always midnight UTC.
type Member struct {
	ID MemberID

	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string

	BirthDate  time.Time
	CreateDate time.Time

	Notes string

	Active bool
}

// Address is a postal address shared by one or more members.
// An address with no remaining member link is removed from the system.
type Address struct {
	ID AddressID

	Street     string
	City       string
	PostalCode string
	Country    string
}

// AttendanceRecord marks that a member attended on a given calendar date.
// At most one record exists per member per date.
type AttendanceRecord struct {
	MemberID MemberID
	Date     time.Time
}
