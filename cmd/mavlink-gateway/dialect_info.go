package main

import (
	"fmt"

	"github.com/kstaniek/mavlink-go/internal/engine"
)

// printDialectInfo lists every message the loaded dialect supports, one
// per line, for operators diagnosing a catalog mismatch.
func printDialectInfo(eng *engine.Engine) {
	for _, name := range eng.SupportedNames() {
		def, ok := eng.DefinitionByName(name)
		if !ok {
			continue
		}
		fmt.Printf("%-24s id=%-5d fields=%d\n", def.Name, def.ID, len(def.Fields))
	}
}
