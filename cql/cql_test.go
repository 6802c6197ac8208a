package cql_test

import (
	"testing"

	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/cql"
)

var errUnknown = eris.New("unknown")

func resolver(names ...string) cql.Resolver {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return n, nil
			}
		}
		return "", errUnknown
	}
}

func TestParse(t *testing.T) {
	resolve := resolver("Position", "FallingBlock", "Identity", "Health")
	tests := []struct {
		query string
		comps []string
		want  bool
	}{
		{"ALL()", nil, true},
		{"CONTAINS(Position)", []string{"Position", "Health"}, true},
		{"CONTAINS(Position, FallingBlock)", []string{"Position"}, false},
		{"EXACT(Position, Health)", []string{"Health", "Position"}, true},
		{"EXACT(Position)", []string{"Health", "Position"}, false},
		{"!CONTAINS(Health)", []string{"Position"}, true},
		{"CONTAINS(Position) & !CONTAINS(Health)", []string{"Position", "Health"}, false},
		{"CONTAINS(Identity) | CONTAINS(Health)", []string{"Health"}, true},
		{"(CONTAINS(Identity) | CONTAINS(Health)) & CONTAINS(Position)", []string{"Health"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			f, err := cql.Parse(tc.query, resolve)
			assert.NilError(t, err)
			assert.Equal(t, tc.want, f.MatchesComponents(tc.comps))
		})
	}
}

func TestParseErrors(t *testing.T) {
	resolve := resolver("Position")
	for _, query := range []string{"", "CONTAINS()", "CONTAINS(Nope)", "EXACT(Position) &", "ALL"} {
		t.Run(query, func(t *testing.T) {
			_, err := cql.Parse(query, resolve)
			assert.Check(t, err != nil)
		})
	}
}
