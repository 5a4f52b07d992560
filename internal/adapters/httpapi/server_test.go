package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memaddressrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/addressrepo"
	memattendancerepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/attendancerepo"
	memclock "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/clock"
	memdepartmentrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/departmentrepo"
	memmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/memberrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/members"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/roster"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/rules"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	memberRepo := memmemberrepo.NewRepo()
	addressRepo := memaddressrepo.NewRepo()
	departmentRepo := memdepartmentrepo.NewRepo()
	attendanceRepo := memattendancerepo.NewRepo()
	clk := memclock.NewManualClock(time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC))

	memberSvc := members.NewService(memberRepo, clk, nil)
	rosterSvc := roster.NewService(memberRepo, addressRepo, departmentRepo, attendanceRepo, nil)
	rulesSvc := rules.NewService(memberRepo, departmentRepo, attendanceRepo, clk, nil)

	// Metrics stay nil here: promauto registers on the process-global
	// registry, which tests must not touch repeatedly.
	return NewRouter(NewServer(memberSvc, rosterSvc, rulesSvc, nil), nil, nil)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createMember(t *testing.T, h http.Handler, email string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/member", `{
		"firstName": "Greta",
		"lastName": "Fischer",
		"email": "`+email+`",
		"phoneNumber": "+49 170 4444444",
		"birthDate": "1992-11-05"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto MemberDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto.ID
}

func TestCreateMember_CreatedThenFound(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	id := createMember(t, h, "greta@example.com")

	// Resubmitting the identical form finds the existing member.
	rec := doJSON(t, h, http.MethodPost, "/api/member", `{
		"firstName": "Greta",
		"lastName": "Fischer",
		"email": "greta@example.com",
		"phoneNumber": "+49 170 4444444",
		"birthDate": "1992-11-05"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto MemberDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Equal(t, id, dto.ID)
	require.Equal(t, "1992-11-05", dto.BirthDate.Format("2006-01-02"))
	// No explicit createDate: the clock's date is used.
	require.Equal(t, "2026-08-31", dto.CreateDate.Format("2006-01-02"))
	require.True(t, dto.Active)
}

func TestCreateMember_NullRequiredField(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/member", `{
		"firstName": "Greta",
		"lastName": null,
		"email": "greta@example.com",
		"birthDate": "1992-11-05"
	}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var status StatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "ERROR", status.Status)
	require.Equal(t, http.StatusForbidden, status.Code)
}

func TestUpdateMember_NullFieldRejected(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodPut, "/api/member", `{
		"id": `+jsonInt(id)+`,
		"email": null
	}`)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestUpdateMember_OmittedFieldsKept(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodPut, "/api/member", `{
		"id": `+jsonInt(id)+`,
		"notes": "board member since 2026"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto MemberDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Equal(t, "board member since 2026", dto.Notes)
	require.Equal(t, "greta@example.com", dto.Email)
	require.Equal(t, "Greta", dto.FirstName)
}

func TestListMembers_InvalidAttribute(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/members/list/bogus", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var status StatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "INVALID ATTRIBUTE", status.Message)
}

func TestListMembers_PageEnvelope(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	createMember(t, h, "a@example.com")
	createMember(t, h, "b@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/members/list/all?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Offset uint32      `json:"offset"`
		Limit  uint32      `json:"limit"`
		Count  int         `json:"count"`
		Items  []MemberDTO `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, uint32(1), page.Offset)
	require.Equal(t, uint32(1), page.Limit)
	require.Equal(t, 1, page.Count)
	require.Len(t, page.Items, 1)
}

func TestCountMembers(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	createMember(t, h, "a@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/members/count/all", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var v ValueDTO[uint32]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Equal(t, uint32(1), v.Value)

	// birthday is a list-only attribute.
	rec = doJSON(t, h, http.MethodGet, "/api/members/count/birthday", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDepartmentAssociation(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/department/add/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/department/add/1", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/department/add/9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id)+"/list/departments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/member/"+jsonInt(id)+"/department/remove/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAddressAssociation(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	body := `{"street": "Lindenweg 4", "city": "Eichenlaub", "postalCode": "54321", "country": "Deutschland"}`
	rec := doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/address/add", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var addr AddressDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addr))

	// A second member at the same address reuses the row.
	other := createMember(t, h, "other@example.com")
	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(other)+"/address/add", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var addr2 AddressDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addr2))
	require.Equal(t, addr.ID, addr2.ID)

	// Null field in the submission.
	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/address/add",
		`{"street": null, "city": "X", "postalCode": "1", "country": "D"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/member/"+jsonInt(id)+"/address/remove/"+jsonInt(addr.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendanceEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/attendance/2026-05-10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/attendance/2026-05-10", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/attendance/not-a-date", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id)+"/list/attendances", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/member/"+jsonInt(id)+"/attendance/2026-05-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMemberFee(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id)+"/fee", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var v ValueDTO[uint32]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Equal(t, uint32(30), v.Value)

	rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/department/add/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id)+"/fee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Equal(t, uint32(75), v.Value)
}

func TestWeaponPurchase(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id)+"/weaponpurchase", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var v ValueDTO[bool]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.False(t, v.Value)

	// 18 attendances inside the trailing year flip the answer.
	for i := 0; i < 18; i++ {
		day := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i*7)
		rec = doJSON(t, h, http.MethodPost, "/api/member/"+jsonInt(id)+"/attendance/"+day.Format("2006-01-02"), "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id)+"/weaponpurchase", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.True(t, v.Value)
}

func TestActivateDeactivate(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)
	id := createMember(t, h, "greta@example.com")

	rec := doJSON(t, h, http.MethodPut, "/api/member/"+jsonInt(id)+"/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/member/"+jsonInt(id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dto MemberDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.False(t, dto.Active)

	rec = doJSON(t, h, http.MethodPut, "/api/member/"+jsonInt(id)+"/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMember_NotFound(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/member/424242", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// unavailableMemberRepo fails every call with a fixed store error.
type unavailableMemberRepo struct {
	err error
}

func (r unavailableMemberRepo) FindOrCreate(context.Context, memberrepo.Member) (memberrepo.Member, bool, error) {
	return memberrepo.Member{}, false, r.err
}

func (r unavailableMemberRepo) Update(context.Context, memberrepo.Member) error { return r.err }

func (r unavailableMemberRepo) SetActive(context.Context, domain.MemberID, bool) error { return r.err }

func (r unavailableMemberRepo) GetByID(context.Context, domain.MemberID) (memberrepo.Member, error) {
	return memberrepo.Member{}, r.err
}

func (r unavailableMemberRepo) List(context.Context, memberrepo.Filter, uint32, uint32) ([]memberrepo.Member, error) {
	return nil, r.err
}

func (r unavailableMemberRepo) Count(context.Context, memberrepo.Filter) (uint32, error) {
	return 0, r.err
}

func TestGetMember_StoreErrorPassedThrough(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("pq: connection reset by peer while reading relation members")
	clk := memclock.NewManualClock(time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC))
	memberSvc := members.NewService(unavailableMemberRepo{err: storeErr}, clk, nil)
	rosterSvc := roster.NewService(memmemberrepo.NewRepo(), memaddressrepo.NewRepo(),
		memdepartmentrepo.NewRepo(), memattendancerepo.NewRepo(), nil)
	rulesSvc := rules.NewService(memmemberrepo.NewRepo(), memdepartmentrepo.NewRepo(),
		memattendancerepo.NewRepo(), clk, nil)
	h := NewRouter(NewServer(memberSvc, rosterSvc, rulesSvc, nil), nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/member/1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// The store message reaches the status payload for diagnosis.
	var status StatusDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "ERROR", status.Status)
	require.Equal(t, http.StatusInternalServerError, status.Code)
	require.Contains(t, status.Message, storeErr.Error())
}

func TestListDepartments(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/departments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ds []DepartmentDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	require.Len(t, ds, 3)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
