package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

const checkedPattern = "github.com/nillion/nilql-go/pkg/nilql/..."

func loadChecked(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode | packages.NeedFiles | packages.NeedName}

	pkgs, err := packages.Load(cfg, checkedPattern)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages under %s contain errors", checkedPattern)
	}
	if len(pkgs) == 0 {
		t.Fatalf("no packages matched %s", checkedPattern)
	}
	return pkgs
}
