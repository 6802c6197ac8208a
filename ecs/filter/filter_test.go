package filter_test

import (
	"testing"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/ecs/filter"
)

type health struct{}

func (health) Name() string { return "Health" }

func TestFilters(t *testing.T) {
	comps := []string{"Health", "Position"}
	tests := []struct {
		name   string
		filter filter.ComponentFilter
		want   bool
	}{
		{"all", filter.All(), true},
		{"contains subset", filter.Contains(filter.Component[health]()), true},
		{"contains missing", filter.Contains("Health", "Velocity"), false},
		{"exact", filter.Exact("Position", "Health"), true},
		{"exact superset", filter.Exact("Position"), false},
		{"not", filter.Not(filter.Contains("Velocity")), true},
		{"and", filter.And(filter.Contains("Health"), filter.Contains("Velocity")), false},
		{"or", filter.Or(filter.Contains("Velocity"), filter.Contains("Position")), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.MatchesComponents(comps))
		})
	}
}
