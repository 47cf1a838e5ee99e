// Package report renders monitors of a gomonitor Manager for humans and log
// pipelines.
package report

import (
	"strings"

	monitor "github.com/lyft/gomonitor"
)

const indent = "  "

// TreeString returns the subtree rooted at n, one monitor per line, indented
// by depth. Unused monitors show only their local name, bound monitors are
// followed by their sample:
//
//	(root)
//	  app
//	    db  Stopwatch "app.db" [count=3 total=...]
//	    jobs  Counter "app.jobs" [value=7 min=0 max=9]
func TreeString(n *monitor.Monitor) string {
	var b strings.Builder
	writeTree(&b, n, 0)
	return b.String()
}

func writeTree(b *strings.Builder, n *monitor.Monitor, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
	if n.Parent() == nil {
		b.WriteString("(root)")
	} else {
		b.WriteString(n.LocalName())
	}
	if n.Kind() != monitor.KindUnused {
		b.WriteString(indent)
		b.WriteString(n.Sample().String())
	}
	b.WriteByte('\n')
	for _, c := range n.Children() {
		writeTree(b, c, depth+1)
	}
}
