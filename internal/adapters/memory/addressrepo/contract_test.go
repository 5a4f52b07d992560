package addressrepo

import (
	"testing"

	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/contracttest"
	memmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/memberrepo"
	addressrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/addressrepo"
	memberrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func TestContract_AddressRepo(t *testing.T) {
	contracttest.RunAddressRepo(t, func(t *testing.T) (addressrepoport.Repository, memberrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), memmemberrepo.NewRepo(), nil
	})
}
