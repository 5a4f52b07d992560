package members

import (
	"time"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// CreateMemberInput carries a validated create request. The transport
// layer has already rejected null required fields; empty strings are
// acceptable here.
type CreateMemberInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string

	BirthDate time.Time

	// CreateDate defaults to today when zero.
	CreateDate time.Time

	Notes  string
	Active bool
}

// UpdateMemberInput is a field-wise update. An explicitly null field is a
// validation error; an unspecified field keeps its stored value.
type UpdateMemberInput struct {
	ID domain.MemberID

	FirstName   Optional[string]
	LastName    Optional[string]
	Email       Optional[string]
	PhoneNumber Optional[string]
	BirthDate   Optional[time.Time]
	Notes       Optional[string]
	Active      Optional[bool]
}
