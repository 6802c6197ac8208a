package filter

type exact struct {
	components []string
}

// Exact matches entities whose component set is exactly the named components.
func Exact(components ...string) ComponentFilter {
	return exact{components: components}
}

func (f exact) MatchesComponents(components []string) bool {
	if len(components) != len(f.components) {
		return false
	}
	for _, name := range components {
		if !matchComponent(f.components, name) {
			return false
		}
	}
	return true
}
