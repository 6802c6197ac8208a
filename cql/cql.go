// Package cql parses the component query language used by the console and the debug endpoint, e.g.
//
//	CONTAINS(Position, FallingBlock) & !EXACT(Identity)
//
// into an ecs filter.
package cql

import (
	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/ecs/filter"
)

type operator int

const (
	opAnd operator = iota
	opOr
)

// Capture tells the parser how to turn the matched token into an operator.
func (o *operator) Capture(s []string) error {
	switch {
	case len(s) == 0:
		return eris.New("missing operator")
	case s[0] == "&":
		*o = opAnd
	case s[0] == "|":
		*o = opOr
	default:
		return eris.Errorf("invalid operator %q", s[0])
	}
	return nil
}

type componentName struct {
	Name string `@Ident`
}

type allExpr struct {
	Matched bool `@"ALL" "(" ")"`
}

type notExpr struct {
	Operand *value `"!" @@`
}

type exactExpr struct {
	Components []*componentName `"EXACT" "(" (@@ ",")* @@ ")"`
}

type containsExpr struct {
	Components []*componentName `"CONTAINS" "(" (@@ ",")* @@ ")"`
}

type value struct {
	All      *allExpr      `  @@`
	Exact    *exactExpr    `| @@`
	Contains *containsExpr `| @@`
	Not      *notExpr      `| @@`
	Group    *term         `| "(" @@ ")"`
}

type opValue struct {
	Operator operator `@("&" | "|")`
	Value    *value   `@@`
}

// term is evaluated left to right; & and | have the same precedence.
type term struct {
	Left  *value     `@@`
	Right []*opValue `@@*`
}

var parser = participle.MustBuild[term]()

// Resolver maps a component name written in a query to the registered component name, failing for unknown names.
type Resolver func(name string) (string, error)

// Parse compiles text into a filter.
func Parse(text string, resolve Resolver) (filter.ComponentFilter, error) {
	t, err := parser.ParseString("", text)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid query %q", text)
	}
	return t.compile(resolve)
}

func (t *term) compile(resolve Resolver) (filter.ComponentFilter, error) {
	acc, err := t.Left.compile(resolve)
	if err != nil {
		return nil, err
	}
	for _, right := range t.Right {
		f, err := right.Value.compile(resolve)
		if err != nil {
			return nil, err
		}
		if right.Operator == opAnd {
			acc = filter.And(acc, f)
		} else {
			acc = filter.Or(acc, f)
		}
	}
	return acc, nil
}

func (v *value) compile(resolve Resolver) (filter.ComponentFilter, error) {
	switch {
	case v.All != nil:
		return filter.All(), nil
	case v.Exact != nil:
		names, err := resolveAll(v.Exact.Components, resolve)
		if err != nil {
			return nil, err
		}
		return filter.Exact(names...), nil
	case v.Contains != nil:
		names, err := resolveAll(v.Contains.Components, resolve)
		if err != nil {
			return nil, err
		}
		return filter.Contains(names...), nil
	case v.Not != nil:
		f, err := v.Not.Operand.compile(resolve)
		if err != nil {
			return nil, err
		}
		return filter.Not(f), nil
	case v.Group != nil:
		return v.Group.compile(resolve)
	}
	return nil, eris.New("empty query expression")
}

func resolveAll(components []*componentName, resolve Resolver) ([]string, error) {
	names := make([]string, 0, len(components))
	for _, c := range components {
		name, err := resolve(c.Name)
		if err != nil {
			return nil, eris.Wrapf(err, "unknown component %q", c.Name)
		}
		names = append(names, name)
	}
	return names, nil
}
