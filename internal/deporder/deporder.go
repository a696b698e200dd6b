// Package deporder implements the external topological dependency sorter
// spec §4.4 and §6 describe as a downstream collaborator: it turns the
// provided/required annotations InstantiateAll recorded on the Registry into
// a linear module order suitable for concatenation, dependencies first.
package deporder

import (
	"sort"

	"github.com/rintaro/es6link/internal/module"
)

// Order returns every registered module's canonical name in dependency
// order: a module always appears after everything it Requires. A post-order
// depth-first traversal over the Requires edges (a module is appended only
// after all of its dependencies) produces this directly, and tolerates
// import cycles for free - the visited guard simply stops descending a
// second time into a module already on the stack, so a cycle contributes
// its first-reached member's position rather than looping forever.
func Order(reg *module.Registry) []string {
	names := make([]string, 0)
	for _, rec := range reg.AllModules() {
		names = append(names, rec.Name)
	}
	sort.Strings(names) // deterministic visit order for a deterministic result

	visited := make(map[string]bool, len(names))
	order := make([]string, 0, len(names))

	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		deps := append([]string(nil), reg.Requires(name)...)
		sort.Strings(deps)
		for _, dep := range deps {
			visit(dep)
		}
		order = append(order, name)
	}

	for _, name := range names {
		visit(name)
	}
	return order
}
