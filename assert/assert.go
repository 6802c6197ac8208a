// Package assert bundles gotest.tools and testify assertions behind one import. Every error-aware assertion prints
// the eris stack of the failing error and compares against its root cause, so sentinel errors wrapped with
// eris.Wrap still match.
package assert

import (
	"time"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"
	testify "github.com/stretchr/testify/assert"
	gotest "gotest.tools/v3/assert"
)

type helperT interface {
	Helper()
}

func helper(t any) {
	if ht, ok := t.(helperT); ok {
		ht.Helper()
	}
}

// withTrace prepends the rendered eris trace of err to the assertion message.
func withTrace(err error, msgAndArgs []any) []any {
	if err == nil {
		return msgAndArgs
	}
	return append([]any{eris.ToString(err, true)}, msgAndArgs...)
}

func Assert(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...any) {
	helper(t)
	gotest.Assert(t, comparison, msgAndArgs...)
}

func Check(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...any) bool {
	helper(t)
	return gotest.Check(t, comparison, msgAndArgs...)
}

func NilError(t gotest.TestingT, err error, msgAndArgs ...any) {
	helper(t)
	gotest.NilError(t, err, withTrace(err, msgAndArgs)...)
}

func Equal(t gotest.TestingT, x, y any, msgAndArgs ...any) {
	helper(t)
	gotest.Equal(t, x, y, msgAndArgs...)
}

func DeepEqual(t gotest.TestingT, x, y any, opts ...gocmp.Option) {
	helper(t)
	gotest.DeepEqual(t, x, y, opts...)
}

func ErrorContains(t gotest.TestingT, err error, substring string, msgAndArgs ...any) {
	helper(t)
	gotest.ErrorContains(t, eris.Cause(err), substring, withTrace(err, msgAndArgs)...)
}

// ErrorIs fails unless the root cause of err is the root cause of expected.
func ErrorIs(t gotest.TestingT, err error, expected error, msgAndArgs ...any) {
	helper(t)
	gotest.ErrorIs(t, eris.Cause(err), eris.Cause(expected), withTrace(err, msgAndArgs)...)
}

// testify wrappers

func Len(t testify.TestingT, object any, length int, msgAndArgs ...any) bool {
	helper(t)
	return testify.Len(t, object, length, msgAndArgs...)
}

func ElementsMatch(t testify.TestingT, listA, listB any, msgAndArgs ...any) bool {
	helper(t)
	return testify.ElementsMatch(t, listA, listB, msgAndArgs...)
}

func NotPanics(t testify.TestingT, f testify.PanicTestFunc, msgAndArgs ...any) bool {
	helper(t)
	return testify.NotPanics(t, f, msgAndArgs...)
}

func JSONEq(t testify.TestingT, expected, actual string, msgAndArgs ...any) bool {
	helper(t)
	return testify.JSONEq(t, expected, actual, msgAndArgs...)
}

func Eventually(t testify.TestingT, condition func() bool, waitFor, tick time.Duration, msgAndArgs ...any) bool {
	helper(t)
	return testify.Eventually(t, condition, waitFor, tick, msgAndArgs...)
}
