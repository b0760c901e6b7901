//go:build tools

// Package tools pins build-time code generators in go.mod.
package tools

import (
	_ "github.com/dmarkham/enumer"
)
