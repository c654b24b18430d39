package lang

import (
	"maps"
	"slices"
)

// Env is a chain of name scopes. The first scope is global and lives for the
// whole session; a scope is pushed for each function call and popped when the
// call returns. Values have copy semantics: lookups return deep copies so no
// two names ever alias the same mutable collection.
type Env struct {
	scopes []map[string]Value
}

// NewEnv returns an environment holding only the global scope.
func NewEnv() *Env {
	return &Env{scopes: []map[string]Value{{}}}
}

// Push enters a new innermost scope seeded with the given bindings.
func (e *Env) Push(bindings map[string]Value) {
	if bindings == nil {
		bindings = map[string]Value{}
	}

	e.scopes = append(e.scopes, bindings)
}

// Pop leaves the innermost scope. The global scope is never popped.
func (e *Env) Pop() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Lookup resolves a name according to its visibility qualifier: global and
// local pin the search to the outermost or innermost scope, the default
// walks the chain innermost first. The returned value is a deep copy.
func (e *Env) Lookup(vis Visibility, name string) (Value, bool) {
	switch vis {
	case VisGlobal:
		v, ok := e.scopes[0][name]

		return CloneValue(v), ok
	case VisLocal:
		v, ok := e.scopes[len(e.scopes)-1][name]

		return CloneValue(v), ok
	default:
		for i := len(e.scopes) - 1; i >= 0; i-- {
			if v, ok := e.scopes[i][name]; ok {
				return CloneValue(v), true
			}
		}

		return nil, false
	}
}

// Set stores a value under a name. Global and local qualifiers address their
// scope directly; the default overwrites the innermost existing binding, or
// creates one in the innermost scope when the name is unbound.
func (e *Env) Set(vis Visibility, name string, v Value) {
	switch vis {
	case VisGlobal:
		e.scopes[0][name] = v
	case VisLocal:
		e.scopes[len(e.scopes)-1][name] = v
	default:
		for i := len(e.scopes) - 1; i >= 0; i-- {
			if _, ok := e.scopes[i][name]; ok {
				e.scopes[i][name] = v

				return
			}
		}

		e.scopes[len(e.scopes)-1][name] = v
	}
}

// Names returns every bound name across all scopes in sorted order, without
// duplicates.
func (e *Env) Names() []string {
	seen := map[string]struct{}{}

	for _, scope := range e.scopes {
		for name := range scope {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// CloneValue returns a deep copy of v. Scalars copy trivially; collections
// copy their backing storage. Expression trees inside functions and
// distributions are immutable after parsing, so they are shared, not copied.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case ListValue:
		elems := make([]Value, len(val.Elems))
		for i, e := range val.Elems {
			elems[i] = CloneValue(e)
		}

		return ListValue{Elems: elems}
	case MapValue:
		entries := make([]MapPair, len(val.Entries))
		for i, e := range val.Entries {
			entries[i] = MapPair{
				Key: CloneValue(e.Key),
				Val: CloneValue(e.Val),
			}
		}

		return MapValue{Entries: entries}
	case DistValue:
		alts := make([]DistAlt, len(val.Alts))
		copy(alts, val.Alts)

		return DistValue{Alts: alts}
	default:
		return v
	}
}
