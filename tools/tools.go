//go:build tools

// Package tools pins the linters used in CI.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
