package system

import (
	"strings"
	"testing"

	"github.com/julianstephens/hsplan/internal/cli/clitest"
)

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("expected up-to-date message, got %q", out.String())
	}
}
