package keymap

import "github.com/samber/lo"

// Resolver maps terminal key names to actions.
type Resolver struct {
	byKey    map[string]Binding
	byAction map[Action][]string
}

// NewResolver indexes bindings. A key bound twice resolves to its last
// binding.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		byKey:    make(map[string]Binding),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			r.byKey[k] = b
		}
		r.byAction[b.Action] = lo.Uniq(append(r.byAction[b.Action], b.Keys...))
	}
	return r
}

// Resolve returns the action bound to key, or "" when there is none.
func (r *Resolver) Resolve(key string) Action {
	return r.byKey[key].Action
}

// Lookup returns the binding of key.
func (r *Resolver) Lookup(key string) (Binding, bool) {
	b, ok := r.byKey[key]
	return b, ok
}

// KeysFor returns the keys of an action in binding order.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Conflicts returns the keys bound to more than one action.
func Conflicts(bindings []Binding) []string {
	owners := make(map[string][]Action)
	var order []string
	for _, b := range bindings {
		for _, k := range b.Keys {
			if _, seen := owners[k]; !seen {
				order = append(order, k)
			}
			owners[k] = lo.Uniq(append(owners[k], b.Action))
		}
	}
	return lo.Filter(order, func(k string, _ int) bool { return len(owners[k]) > 1 })
}
