package config

import "fmt"

// ResolverFailed reports substitution resolution failure, including
// the cycle path when resolution looped back on itself (§5's
// substitution-cycle-detection requirement).
type ResolverFailed struct {
	CyclePaths []string
	Message    string
}

func (e *ResolverFailed) Error() string {
	if len(e.CyclePaths) > 0 {
		return fmt.Sprintf("%s (cycle: %v)", e.Message, e.CyclePaths)
	}
	return e.Message
}

// Resolve replaces every `${path}`/`${?path}` substitution in root
// with the value found at that path within root itself, deferring
// object/array descent until a fixed point (nested substitutions may
// themselves resolve to further substitutions' results). An optional
// substitution (`${?path}`) that cannot be resolved is simply dropped
// from its containing object rather than failing the whole document.
func Resolve(root Value) (Value, error) {
	r := &resolver{root: root, visiting: map[string]bool{}}
	return r.resolveValue(root, nil)
}

type resolver struct {
	root     Value
	visiting map[string]bool
}

func (r *resolver) resolveValue(v Value, stack []string) (Value, error) {
	switch v.Kind {
	case KindSubstitution:
		return r.resolveSubstitution(v, stack)
	case KindConcat:
		var b []byte
		for _, part := range v.Array {
			rv, err := r.resolveValue(part, stack)
			if err != nil {
				return Value{}, err
			}
			b = append(b, rv.String()...)
		}
		return String(string(b)), nil
	case KindArray:
		out := make([]Value, 0, len(v.Array))
		for _, e := range v.Array {
			rv, err := r.resolveValue(e, stack)
			if err != nil {
				return Value{}, err
			}
			out = append(out, rv)
		}
		return Array(out), nil
	case KindObject:
		out := make(map[string]Value, len(v.Object))
		for k, e := range v.Object {
			if e.Kind == KindSubstitution && e.Optional {
				if _, ok := r.root.Get(e.Path); !ok {
					continue // optional, unresolved: drop the key entirely
				}
			}
			rv, err := r.resolveValue(e, stack)
			if err != nil {
				return Value{}, err
			}
			out[k] = rv
		}
		return Object(out), nil
	default:
		return v, nil
	}
}

func (r *resolver) resolveSubstitution(v Value, stack []string) (Value, error) {
	if r.visiting[v.Path] {
		return Value{}, &ResolverFailed{CyclePaths: append(append([]string{}, stack...), v.Path), Message: "substitution cycle detected"}
	}
	target, ok := r.root.Get(v.Path)
	if !ok {
		if v.Optional {
			return Null(), nil
		}
		return Value{}, &ResolverFailed{Message: fmt.Sprintf("unresolved substitution ${%s}", v.Path)}
	}
	r.visiting[v.Path] = true
	defer delete(r.visiting, v.Path)
	return r.resolveValue(target, append(stack, v.Path))
}
