// Package nobarehttp keeps gateway traffic in one place: outside the
// gateway client package, code must not talk HTTP through the net/http
// package-level helpers or build its own http.Client.
package nobarehttp

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports http.Get, http.Head, http.Post, http.PostForm,
// http.DefaultClient and http.Client literals outside internal/gateway.
// Test files are not checked.
var Analyzer = &analysis.Analyzer{
	Name: "nobarehttp",
	Doc:  "prohibits bare net/http client calls outside the gateway package",
	Run:  run,
}

const gatewayPackage = "internal/gateway"

var forbidden = map[string]bool{
	"Get":           true,
	"Head":          true,
	"Post":          true,
	"PostForm":      true,
	"DefaultClient": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	pkgPath := pass.Pkg.Path()
	if pkgPath == gatewayPackage || strings.HasSuffix(pkgPath, "/"+gatewayPackage) {
		return nil, nil
	}

	for _, file := range pass.Files {
		// Exclude go-build cache files and tests
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) || strings.HasSuffix(filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.SelectorExpr:
				obj := pass.TypesInfo.Uses[node.Sel]
				if isNetHTTP(obj) && forbidden[obj.Name()] {
					pass.Reportf(node.Pos(), "use the gateway client instead of http.%s", obj.Name())
				}
			case *ast.CompositeLit:
				if isHTTPClient(pass.TypesInfo.TypeOf(node)) {
					pass.Reportf(node.Pos(), "use the gateway client instead of a new http.Client")
				}
			}

			return true
		})
	}

	return nil, nil
}

func isNetHTTP(obj types.Object) bool {
	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == "net/http"
}

func isHTTPClient(typ types.Type) bool {
	named, ok := typ.(*types.Named)
	if !ok {
		return false
	}

	return isNetHTTP(named.Obj()) && named.Obj().Name() == "Client"
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/") || strings.Contains(path, `\go-build\`)
}
