package scope

import (
	"github.com/hyperlace-lang/hyperlace/internal/compiler/symbols"
)

// Scope is one lexical region: the global scope or a function body. A name is
// visible in its own scope and all enclosing scopes, never in siblings.
type Scope struct {
	Symbols map[string]symbols.SymbolInfo
	Outer   *Scope
	Name    string
}

func NewScope(outer *Scope, name string) *Scope {
	return &Scope{
		Symbols: make(map[string]symbols.SymbolInfo),
		Outer:   outer,
		Name:    name,
	}
}

// Define adds a symbol to the current scope level. Redefining a name in the
// same scope overwrites it; Hyperlace assignments double as declarations.
func (s *Scope) Define(name string, info symbols.SymbolInfo) {
	s.Symbols[name] = info
}

// Lookup searches from the current scope outwards.
func (s *Scope) Lookup(name string) (*symbols.SymbolInfo, bool) {
	for scope := s; scope != nil; scope = scope.Outer {
		if info, ok := scope.Symbols[name]; ok {
			infoCopy := info
			return &infoCopy, true
		}
	}
	return nil, false
}
