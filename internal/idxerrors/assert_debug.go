//go:build idxdebug

package idxerrors

import "fmt"

// AssertDebug panics if cond is false. Only compiled in with -tags idxdebug;
// production builds get the no-op in assert.go.
func AssertDebug(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("idxerrors: assertion failed: "+format, args...))
	}
}
