package lockmgr_test

import (
	"os"
	"testing"

	fstesting "github.com/ValentinKolb/fsSync/lib/testing"
)

func TestMain(m *testing.M) {
	fstesting.HelperMain()
	os.Exit(m.Run())
}
