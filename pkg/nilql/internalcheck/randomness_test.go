package internalcheck

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Shares, masks, nonces and salts must come from crypto/rand.
func TestNoMathRand(t *testing.T) {
	pkgs := loadChecked(t, packages.NeedSyntax)

	banned := map[string]bool{"math/rand": true, "math/rand/v2": true}
	var findings []string
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, imp := range file.Imports {
				path, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					continue
				}
				if banned[path] {
					findings = append(findings, fmt.Sprintf("%s: import of %s", pkg.Fset.Position(imp.Pos()), path))
				}
			}
		}
	}

	if len(findings) > 0 {
		t.Fatalf("randomness policy violation:\n%s", strings.Join(findings, "\n"))
	}
}
