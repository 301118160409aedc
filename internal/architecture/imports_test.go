package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importEdge struct {
	file string
	imp  string
}

// TestLayerBoundaries keeps the engine packages free of transport and wiring.
func TestLayerBoundaries(t *testing.T) {
	modulePath, edges := loadImports(t)

	var bad []string
	for _, e := range edges {
		layer := layerFor(e.file)
		for _, prefix := range disallowedImports(modulePath, layer) {
			if strings.HasPrefix(e.imp, prefix) {
				bad = append(bad, fmt.Sprintf("- %s imports %q (layer %s, disallowed: %q)", e.file, e.imp, layer, prefix))
				break
			}
		}
	}
	if len(bad) > 0 {
		t.Fatalf("import boundary violations:\n%s", strings.Join(bad, "\n"))
	}
}

// TestClientsOnlyFromWiring allows internal/clients to be imported by the
// composition layer and the CLI only.
func TestClientsOnlyFromWiring(t *testing.T) {
	modulePath, edges := loadImports(t)

	var bad []string
	for _, e := range edges {
		if !strings.HasPrefix(e.imp, modulePath+"/internal/clients/") {
			continue
		}
		switch {
		case strings.HasPrefix(e.file, "internal/clients/"),
			strings.HasPrefix(e.file, "internal/app/"),
			strings.HasPrefix(e.file, "internal/cli/"):
			continue
		}
		bad = append(bad, fmt.Sprintf("- %s imports %q", e.file, e.imp))
	}
	if len(bad) > 0 {
		t.Fatalf("internal/clients imported outside app/cli (inject an interface instead):\n%s", strings.Join(bad, "\n"))
	}
}

func layerFor(rel string) string {
	switch {
	case strings.HasPrefix(rel, "internal/domain/"):
		return "domain"
	case strings.HasPrefix(rel, "internal/pkg/"), strings.HasPrefix(rel, "internal/platform/"):
		return "platform"
	case strings.HasPrefix(rel, "internal/data/"):
		return "data"
	case strings.HasPrefix(rel, "internal/modules/"):
		return "modules"
	case strings.HasPrefix(rel, "internal/services/"):
		return "services"
	case strings.HasPrefix(rel, "internal/http/"), strings.HasPrefix(rel, "internal/temporalx/"):
		return "transport"
	default:
		return ""
	}
}

func disallowedImports(modulePath string, layer string) []string {
	p := func(dirs ...string) []string {
		out := make([]string, 0, len(dirs))
		for _, d := range dirs {
			out = append(out, modulePath+"/internal/"+d+"/")
		}
		return out
	}
	upper := []string{"http", "temporalx", "services", "app", "cli"}
	switch layer {
	case "domain":
		return p(append([]string{"data", "modules", "pkg", "platform", "observability"}, upper...)...)
	case "platform":
		return p(append([]string{"data", "modules"}, upper...)...)
	case "data":
		return p(append([]string{"modules"}, upper...)...)
	case "modules":
		return p(upper...)
	case "services":
		return p("http", "temporalx", "app", "cli")
	case "transport":
		return p("data", "app", "cli")
	default:
		return nil
	}
}

func loadImports(t *testing.T) (string, []importEdge) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	var edges []importEdge
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			edges = append(edges, importEdge{file: filepath.ToSlash(rel), imp: imp})
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return modulePath, edges
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp != "" {
				return mp, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
