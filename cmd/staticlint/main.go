// Command staticlint is the linkshrink lint binary. On top of the usual
// vet-style passes it enforces one house rule: every request to the gateway
// goes through internal/gateway, so nobody else calls net/http's client
// helpers or builds an http.Client.
//
// Staticcheck checks are opt-in. Put their names into config.json next to
// the binary:
//
//	{"Staticcheck": ["SA1019", "SA4006"]}
//
// Usage:
//
//	staticlint ./...
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/linkshrink/cmd/staticlint/nobarehttp"
)

const configFileName = "config.json"

type lintConfig struct {
	Staticcheck []string
}

// loadConfig reads config.json from the binary's directory. A missing file
// means no staticcheck checks.
func loadConfig() (lintConfig, error) {
	var cfg lintConfig

	executable, err := os.Executable()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(executable), configFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", configFileName, err)
	}

	return cfg, nil
}

// analyzers returns the fixed set plus the staticcheck checks named in cfg.
func analyzers(cfg lintConfig) []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		// gateway traffic stays in internal/gateway
		nobarehttp.Analyzer,

		// response bodies, error wrapping and contexts of gateway calls
		httpresponse.Analyzer,
		errorsas.Analyzer,
		lostcancel.Analyzer,
		nilerr.Analyzer,

		// session store and UI loop share state behind mutexes
		copylock.Analyzer,
		loopclosure.Analyzer,

		// JSON models of the gateway contract
		structtag.Analyzer,
		unmarshal.Analyzer,

		printf.Analyzer,
		unreachable.Analyzer,
		ineffassign.Analyzer,
	}

	enabled := make(map[string]bool, len(cfg.Staticcheck))
	for _, name := range cfg.Staticcheck {
		enabled[name] = true
	}
	for _, check := range staticcheck.Analyzers {
		if enabled[check.Analyzer.Name] {
			checks = append(checks, check.Analyzer)
		}
	}

	return checks
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	multichecker.Main(analyzers(cfg)...)
}
