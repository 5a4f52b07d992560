package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
)

// MemberDTO is the wire shape of a member.
type MemberDTO struct {
	ID          int64              `json:"id"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Email       string             `json:"email"`
	PhoneNumber string             `json:"phoneNumber"`
	BirthDate   openapi_types.Date `json:"birthDate"`
	CreateDate  openapi_types.Date `json:"createDate"`
	Notes       string             `json:"notes"`
	Active      bool               `json:"active"`
}

func toMemberDTO(m domain.Member) MemberDTO {
	return MemberDTO{
		ID:          int64(m.ID),
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		BirthDate:   openapi_types.Date{Time: m.BirthDate},
		CreateDate:  openapi_types.Date{Time: m.CreateDate},
		Notes:       m.Notes,
		Active:      m.Active,
	}
}

// CreateMemberRequest uses nullable fields so an explicit null can be told
// apart from an omitted field. Required fields must carry a value.
type CreateMemberRequest struct {
	FirstName   nullable.Nullable[string]             `json:"firstName"`
	LastName    nullable.Nullable[string]             `json:"lastName"`
	Email       nullable.Nullable[string]             `json:"email"`
	PhoneNumber nullable.Nullable[string]             `json:"phoneNumber"`
	BirthDate   nullable.Nullable[openapi_types.Date] `json:"birthDate"`
	CreateDate  nullable.Nullable[openapi_types.Date] `json:"createDate"`
	Notes       nullable.Nullable[string]             `json:"notes"`
	Active      nullable.Nullable[bool]               `json:"active"`
}

// UpdateMemberRequest carries a field-wise update. Omitted fields keep
// their stored value; null fields are rejected downstream.
type UpdateMemberRequest struct {
	ID          int64                                 `json:"id"`
	FirstName   nullable.Nullable[string]             `json:"firstName"`
	LastName    nullable.Nullable[string]             `json:"lastName"`
	Email       nullable.Nullable[string]             `json:"email"`
	PhoneNumber nullable.Nullable[string]             `json:"phoneNumber"`
	BirthDate   nullable.Nullable[openapi_types.Date] `json:"birthDate"`
	Notes       nullable.Nullable[string]             `json:"notes"`
	Active      nullable.Nullable[bool]               `json:"active"`
}

// AddressRequest is an address submission; all four fields are required.
type AddressRequest struct {
	Street     nullable.Nullable[string] `json:"street"`
	City       nullable.Nullable[string] `json:"city"`
	PostalCode nullable.Nullable[string] `json:"postalCode"`
	Country    nullable.Nullable[string] `json:"country"`
}

// AddressDTO is the wire shape of an address.
type AddressDTO struct {
	ID         int64  `json:"id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func toAddressDTO(a domain.Address) AddressDTO {
	return AddressDTO{
		ID:         int64(a.ID),
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// DepartmentDTO is the wire shape of a department.
type DepartmentDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toDepartmentDTO(d domain.Department) DepartmentDTO {
	return DepartmentDTO{ID: int64(d.ID), Name: d.Name}
}

// PageDTO is the list envelope: the page window plus the items in it.
type PageDTO struct {
	Offset uint32 `json:"offset"`
	Limit  uint32 `json:"limit"`
	Count  int    `json:"count"`
	Items  any    `json:"items"`
}

func toPageDTO[T any](items []T, limit, offset uint32) PageDTO {
	if items == nil {
		items = []T{}
	}
	return PageDTO{Offset: offset, Limit: limit, Count: len(items), Items: items}
}

// ValueDTO wraps scalar results such as fees and counts.
type ValueDTO[T any] struct {
	Value T `json:"value"`
}

// StatusDTO is the generic status payload used where no entity body
// applies.
type StatusDTO struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func toDateDTOs(dates []time.Time) []openapi_types.Date {
	out := make([]openapi_types.Date, 0, len(dates))
	for _, d := range dates {
		out = append(out, openapi_types.Date{Time: d})
	}
	return out
}
