// Package testutil provides deterministic stand-ins for the runtime's
// non-deterministic dependencies: a manual clock for timer effects and a
// sequential UUID generator for todo identifiers.
package testutil
