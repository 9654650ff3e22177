//go:build tools
// +build tools

package tools

// Development tools pinned in go.mod: lint, goose CLI for ad-hoc migrations,
// sqlc for regenerating internal/database/generated, swag for the OpenAPI docs,
// mockery and benchstat.

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/pressly/goose/v3/cmd/goose"
	_ "github.com/sqlc-dev/sqlc/cmd/sqlc"
	_ "github.com/swaggo/swag/cmd/swag"
	_ "github.com/vektra/mockery/v2"
	_ "golang.org/x/perf/cmd/benchstat"
)
