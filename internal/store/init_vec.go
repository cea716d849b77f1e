//go:build sqlite_vec && cgo

package store

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Register the sqlite-vec extension as auto-loadable so ANN-capable
	// builds can use vec0 virtual tables.
	vec.Auto()
}
