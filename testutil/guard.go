// Package testutil holds architecture guards that keep worklog's layers
// pointing the right way: domain and pure logic never reach into storage,
// transport, or the application service.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Module is the worklog module path.
const Module = "worklog"

// Import path prefixes for the layers guarded by architecture tests.
const (
	InternalPrefix = Module + "/internal/"
	InfraPrefix    = Module + "/internal/infra/"
	AdaptersPrefix = Module + "/internal/adapters/"
	CorePrefix     = Module + "/internal/core"
)

// StorageDriverPrefixes are the third-party database and cache clients only
// the persistence backends may depend on.
var StorageDriverPrefixes = []string{
	"github.com/jackc/pgx",
	"github.com/redis/go-redis",
	"modernc.org/sqlite",
	"github.com/aws/aws-sdk-go-v2",
}

// UnderAny returns a predicate matching import paths equal to or nested
// below any of the prefixes.
func UnderAny(prefixes ...string) func(string) bool {
	return func(path string) bool {
		for _, p := range prefixes {
			trimmed := strings.TrimSuffix(p, "/")
			if path == trimmed || strings.HasPrefix(path, trimmed+"/") {
				return true
			}
		}
		return false
	}
}

// InternalImportForbidden matches any worklog internal package.
func InternalImportForbidden(path string) bool {
	return UnderAny(InternalPrefix)(path)
}

// AssertNoDirectImports parses the non-test .go files directly in dir and
// fails when an import satisfies forbidden. Subdirectories are not scanned.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIfViolations(t, "forbidden direct imports", reason, viols)
}

// AssertNoTransitiveDependency runs `go list -deps pattern` and fails when
// any listed package satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	out, err := goListDeps(pattern)
	if err != nil {
		t.Fatalf("go list failed: %v\n%s", err, out)
	}
	failIfViolations(t, "forbidden transitive dependency", reason, matchLines(out, forbidden))
}

var goListDeps = func(pattern string) ([]byte, error) {
	return exec.Command("go", "list", "-deps", pattern).CombinedOutput()
}

func matchLines(out []byte, forbidden func(string) bool) []string {
	var viols []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" && forbidden(line) {
			viols = append(viols, line)
		}
	}
	return viols
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, `"`)
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, what, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("%s detected (%s):\n%s", what, reason, strings.Join(viols, "\n"))
	}
}
