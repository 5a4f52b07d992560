package departmentrepo

import (
	"testing"

	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/contracttest"
	pgmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/memberrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/testutil"
	departmentrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
	memberrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func TestContract_PostgresDepartmentRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunDepartmentRepo(t, func(t *testing.T) (departmentrepoport.Repository, memberrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), pgmemberrepo.NewRepo(pool), nil
	})
}
