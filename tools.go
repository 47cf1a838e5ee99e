//go:build tools

package monitor

import (
	_ "golang.org/x/tools/go/analysis/passes/atomicalign"
	_ "golang.org/x/tools/go/analysis/passes/copylock"
	_ "golang.org/x/tools/go/analysis/passes/lostcancel"
	_ "golang.org/x/tools/go/analysis/passes/nilness"
	_ "golang.org/x/tools/go/analysis/passes/shadow"
)
