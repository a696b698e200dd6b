// Package concat is the concatenation driver downstream of the Rewriter
// Pass (spec §1's "concatenation" collaborator): it joins every module's
// rewritten tree, in deporder.Order's dependency order, into one output.
package concat

import (
	"fmt"
	"strings"

	"github.com/rintaro/es6link/internal/dump"
	"github.com/rintaro/es6link/internal/module"
)

// Modules joins every name in order that still resolves to a registered
// Record, skipping names demoted to plain scripts by
// Registry.InstantiateAll - those never went through the Rewriter Pass and
// have nothing of this linker's to contribute to the concatenated output.
func Modules(reg *module.Registry, order []string) string {
	var b strings.Builder
	for _, name := range order {
		rec, ok := reg.GetModule(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "// %s\n", name)
		b.WriteString(dump.File(rec.Tree))
		b.WriteString("\n")
	}
	return b.String()
}
