package filter

// ComponentFilter matches entities by the names of the components attached to them.
type ComponentFilter interface {
	// MatchesComponents returns true if an entity with the given components matches the filter.
	MatchesComponents(components []string) bool
}

// Named is anything that identifies a component type by name.
type Named interface {
	Name() string
}

// Component returns the name of component type T for use in Contains and Exact.
func Component[T Named]() string {
	var x T
	return x.Name()
}

func matchComponent(components []string, name string) bool {
	for _, c := range components {
		if c == name {
			return true
		}
	}
	return false
}
