package domain

// The club has a fixed catalog of three departments. Their ids are stable
// and shared with the database seed data.
const (
	DepartmentBogenschiessen DepartmentID = 1
	DepartmentLuftdruck      DepartmentID = 2
	DepartmentSchusswaffen   DepartmentID = 3
)

// Department is one of the club's fixed activity groups.
type Department struct {
	ID   DepartmentID
	Name string
}

// Fee is an annual membership fee in whole euros.
type Fee uint32

// FeeClass is the fee bracket a member falls into based on their
// department set. Raw department ids never reach the fee table directly;
// classification happens first so an unrecognized id is an explicit error
// instead of a silent zero fee.
type FeeClass int

const (
	FeeClassNone FeeClass = iota
	FeeClassBogenschiessen
	FeeClassLuftdruck
	FeeClassSchusswaffen
	FeeClassMultiple
)

var feeByClass = map[FeeClass]Fee{
	FeeClassNone:           30,
	FeeClassBogenschiessen: 65,
	FeeClassLuftdruck:      55,
	FeeClassSchusswaffen:   75,
	FeeClassMultiple:       90,
}

var classByDepartment = map[DepartmentID]FeeClass{
	DepartmentBogenschiessen: FeeClassBogenschiessen,
	DepartmentLuftdruck:      FeeClassLuftdruck,
	DepartmentSchusswaffen:   FeeClassSchusswaffen,
}

// ClassifyDepartments maps a member's department set to a fee class.
// Zero departments and two-or-more departments each have a flat bracket;
// exactly one department uses that department's bracket. A single
// unrecognized department id returns ok=false.
func ClassifyDepartments(ids []DepartmentID) (FeeClass, bool) {
	switch {
	case len(ids) == 0:
		return FeeClassNone, true
	case len(ids) > 1:
		return FeeClassMultiple, true
	default:
		c, ok := classByDepartment[ids[0]]
		return c, ok
	}
}

// AnnualFee returns the yearly dues for the fee class.
func (c FeeClass) AnnualFee() Fee {
	return feeByClass[c]
}
