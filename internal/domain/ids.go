package domain

// MemberID is the server-assigned identifier of a member record.
// It is immutable once assigned; zero means "not yet persisted".
type MemberID int64

// AddressID is the server-assigned identifier of an address record.
type AddressID int64

// DepartmentID identifies one of the club's fixed activity departments.
type DepartmentID int64
