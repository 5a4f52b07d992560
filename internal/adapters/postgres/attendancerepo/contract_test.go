package attendancerepo

import (
	"testing"

	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/contracttest"
	pgmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/memberrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/testutil"
	attendancerepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
	memberrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func TestContract_PostgresAttendanceRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunAttendanceRepo(t, func(t *testing.T) (attendancerepoport.Repository, memberrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), pgmemberrepo.NewRepo(pool), nil
	})
}
