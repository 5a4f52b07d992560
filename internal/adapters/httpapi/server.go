package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"

	"github.com/SV-Eichenlaub/club-roster-api/internal/app/members"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/roster"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/rules"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

// Server is the HTTP adapter. It decodes requests, delegates to the
// application services and encodes their results; no business rules live
// here.
type Server struct {
	Members *members.Service
	Roster  *roster.Service
	Rules   *rules.Service
	Log     *slog.Logger
}

func NewServer(membersSvc *members.Service, rosterSvc *roster.Service, rulesSvc *rules.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Members: membersSvc, Roster: rosterSvc, Rules: rulesSvc, Log: log}
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	f, ok := listFilter(chi.URLParam(r, "attribute"))
	if !ok {
		writeStatus(w, http.StatusNotFound, "INVALID ATTRIBUTE")
		return
	}
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	ms, err := s.Members.ListMembers(r.Context(), f, limit, offset)
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	out := make([]MemberDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, toPageDTO(out, limit, offset))
}

func (s *Server) countMembers(w http.ResponseWriter, r *http.Request) {
	f, ok := countFilter(chi.URLParam(r, "attribute"))
	if !ok {
		writeStatus(w, http.StatusNotFound, "INVALID ATTRIBUTE")
		return
	}
	n, err := s.Members.CountMembers(r.Context(), f)
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueDTO[uint32]{Value: n})
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	m, err := s.Members.GetMember(r.Context(), domain.MemberID(id))
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	firstName, ok := requireField(w, req.FirstName, "firstName")
	if !ok {
		return
	}
	lastName, ok := requireField(w, req.LastName, "lastName")
	if !ok {
		return
	}
	email, ok := requireField(w, req.Email, "email")
	if !ok {
		return
	}
	phoneNumber, ok := requireField(w, req.PhoneNumber, "phoneNumber")
	if !ok {
		return
	}
	birthDate, ok := requireField(w, req.BirthDate, "birthDate")
	if !ok {
		return
	}

	in := members.CreateMemberInput{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phoneNumber,
		BirthDate:   birthDate.Time,
		Active:      true,
	}
	if req.Notes.IsSpecified() && !req.Notes.IsNull() {
		in.Notes = req.Notes.MustGet()
	}
	if req.Active.IsSpecified() && !req.Active.IsNull() {
		in.Active = req.Active.MustGet()
	}
	if req.CreateDate.IsSpecified() && !req.CreateDate.IsNull() {
		in.CreateDate = req.CreateDate.MustGet().Time
	}

	m, created, err := s.Members.CreateMember(r.Context(), in)
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toMemberDTO(m))
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID <= 0 {
		writeStatus(w, http.StatusForbidden, "id is required")
		return
	}

	in := members.UpdateMemberInput{
		ID:          domain.MemberID(req.ID),
		FirstName:   toOptional(req.FirstName),
		LastName:    toOptional(req.LastName),
		Email:       toOptional(req.Email),
		PhoneNumber: toOptional(req.PhoneNumber),
		Notes:       toOptional(req.Notes),
		Active:      toOptional(req.Active),
	}
	switch {
	case !req.BirthDate.IsSpecified():
		in.BirthDate = members.Unspecified[time.Time]()
	case req.BirthDate.IsNull():
		in.BirthDate = members.Null[time.Time]()
	default:
		in.BirthDate = members.Some(req.BirthDate.MustGet().Time)
	}

	m, err := s.Members.UpdateMember(r.Context(), in)
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

func (s *Server) activateMember(w http.ResponseWriter, r *http.Request) {
	s.setMemberActive(w, r, true, "member activated")
}

func (s *Server) deactivateMember(w http.ResponseWriter, r *http.Request) {
	s.setMemberActive(w, r, false, "member deactivated")
}

func (s *Server) setMemberActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.Members.SetMemberActive(r.Context(), domain.MemberID(id), active); err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeStatus(w, http.StatusOK, message)
}

func (s *Server) addDepartment(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	departmentID, ok := idParam(w, r, "departmentId")
	if !ok {
		return
	}
	err := s.Roster.AssociateDepartment(r.Context(), domain.MemberID(memberID), domain.DepartmentID(departmentID))
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeStatus(w, http.StatusOK, "member added to department")
}

func (s *Server) removeDepartment(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	departmentID, ok := idParam(w, r, "departmentId")
	if !ok {
		return
	}
	err := s.Roster.DisassociateDepartment(r.Context(), domain.MemberID(memberID), domain.DepartmentID(departmentID))
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeStatus(w, http.StatusOK, "member removed from department")
}

func (s *Server) addAddress(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	var req AddressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	street, ok := requireField(w, req.Street, "street")
	if !ok {
		return
	}
	city, ok := requireField(w, req.City, "city")
	if !ok {
		return
	}
	postalCode, ok := requireField(w, req.PostalCode, "postalCode")
	if !ok {
		return
	}
	country, ok := requireField(w, req.Country, "country")
	if !ok {
		return
	}

	a, created, err := s.Roster.AssociateAddress(r.Context(), domain.MemberID(memberID), roster.AddressInput{
		Street:     street,
		City:       city,
		PostalCode: postalCode,
		Country:    country,
	})
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toAddressDTO(a))
}

func (s *Server) removeAddress(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	addressID, ok := idParam(w, r, "addressId")
	if !ok {
		return
	}
	err := s.Roster.DisassociateAddress(r.Context(), domain.MemberID(memberID), domain.AddressID(addressID))
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeStatus(w, http.StatusOK, "address disassociated")
}

func (s *Server) addAttendance(w http.ResponseWriter, r *http.Request) {
	memberID, date, ok := attendanceParams(w, r)
	if !ok {
		return
	}
	if err := s.Roster.AddAttendance(r.Context(), memberID, date); err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeStatus(w, http.StatusOK, "attendance recorded")
}

func (s *Server) removeAttendance(w http.ResponseWriter, r *http.Request) {
	memberID, date, ok := attendanceParams(w, r)
	if !ok {
		return
	}
	if err := s.Roster.RemoveAttendance(r.Context(), memberID, date); err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeStatus(w, http.StatusOK, "attendance removed")
}

func (s *Server) listMemberRelations(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch chi.URLParam(r, "attribute") {
	case "addresses":
		as, err := s.Roster.ListMemberAddresses(ctx, domain.MemberID(memberID), limit, offset)
		if err != nil {
			writeError(w, r, s.Log, err)
			return
		}
		out := make([]AddressDTO, 0, len(as))
		for _, a := range as {
			out = append(out, toAddressDTO(a))
		}
		writeJSON(w, http.StatusOK, toPageDTO(out, limit, offset))
	case "departments":
		ds, err := s.Roster.ListMemberDepartments(ctx, domain.MemberID(memberID), limit, offset)
		if err != nil {
			writeError(w, r, s.Log, err)
			return
		}
		out := make([]DepartmentDTO, 0, len(ds))
		for _, d := range ds {
			out = append(out, toDepartmentDTO(d))
		}
		writeJSON(w, http.StatusOK, toPageDTO(out, limit, offset))
	case "attendances":
		dates, err := s.Roster.ListMemberAttendances(ctx, domain.MemberID(memberID), limit, offset)
		if err != nil {
			writeError(w, r, s.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPageDTO(toDateDTOs(dates), limit, offset))
	default:
		writeStatus(w, http.StatusNotFound, "INVALID ATTRIBUTE")
	}
}

func (s *Server) memberFee(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	fee, err := s.Rules.AnnualFee(r.Context(), domain.MemberID(memberID))
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueDTO[uint32]{Value: uint32(fee)})
}

func (s *Server) weaponPurchase(w http.ResponseWriter, r *http.Request) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return
	}
	eligible, err := s.Rules.CanPurchaseWeapon(r.Context(), domain.MemberID(memberID))
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueDTO[bool]{Value: eligible})
}

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	ds, err := s.Roster.ListDepartments(r.Context())
	if err != nil {
		writeError(w, r, s.Log, err)
		return
	}
	out := make([]DepartmentDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDepartmentDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func listFilter(attribute string) (memberrepo.Filter, bool) {
	switch attribute {
	case "all":
		return memberrepo.FilterAll, true
	case "active":
		return memberrepo.FilterActive, true
	case "inactive":
		return memberrepo.FilterInactive, true
	case "birthday":
		return memberrepo.FilterUpcomingBirthday, true
	default:
		return "", false
	}
}

func countFilter(attribute string) (memberrepo.Filter, bool) {
	switch attribute {
	case "all":
		return memberrepo.FilterAll, true
	case "active":
		return memberrepo.FilterActive, true
	case "inactive":
		return memberrepo.FilterInactive, true
	default:
		return "", false
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeStatus(w, http.StatusForbidden, "malformed request body")
		return false
	}
	return true
}

// requireField extracts a required nullable field; omitted and null are
// both rejected.
func requireField[T any](w http.ResponseWriter, f nullable.Nullable[T], name string) (T, bool) {
	var zero T
	if !f.IsSpecified() || f.IsNull() {
		writeStatus(w, http.StatusForbidden, "at least one necessary field was null")
		return zero, false
	}
	return f.MustGet(), true
}

func toOptional[T any](f nullable.Nullable[T]) members.Optional[T] {
	switch {
	case !f.IsSpecified():
		return members.Unspecified[T]()
	case f.IsNull():
		return members.Null[T]()
	default:
		return members.Some(f.MustGet())
	}
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeStatus(w, http.StatusForbidden, "invalid "+name)
		return 0, false
	}
	return id, true
}

func pageParams(w http.ResponseWriter, r *http.Request) (limit, offset uint32, ok bool) {
	limit, ok = queryUint32(w, r, "limit")
	if !ok {
		return 0, 0, false
	}
	offset, ok = queryUint32(w, r, "offset")
	if !ok {
		return 0, 0, false
	}
	return limit, offset, true
}

func queryUint32(w http.ResponseWriter, r *http.Request, name string) (uint32, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeStatus(w, http.StatusForbidden, "invalid "+name)
		return 0, false
	}
	return uint32(v), true
}

func attendanceParams(w http.ResponseWriter, r *http.Request) (domain.MemberID, time.Time, bool) {
	memberID, ok := idParam(w, r, "memberId")
	if !ok {
		return 0, time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		writeStatus(w, http.StatusForbidden, "invalid date, expected YYYY-MM-DD")
		return 0, time.Time{}, false
	}
	return domain.MemberID(memberID), date, true
}
