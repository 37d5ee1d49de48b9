package export

import (
	"testing"

	"worklog/testutil"
)

func TestExportDoesNotReachIntoService(t *testing.T) {
	forbidden := testutil.UnderAny(testutil.CorePrefix, testutil.AdaptersPrefix, testutil.InfraPrefix)
	testutil.AssertNoDirectImports(t, ".", forbidden, "export renders through the blob facade only")
}
