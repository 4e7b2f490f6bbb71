// Package schema holds the GraphQL SDL served by cmd/graphql.
package schema

import (
	_ "embed"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphqls
var source string

// Load parses and validates the embedded schema
func Load() (*ast.Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: source})
	if err != nil {
		return nil, fmt.Errorf("failed to load graphql schema: %w", err)
	}
	return s, nil
}

// MustLoad is Load for package initialisation and tests
func MustLoad() *ast.Schema {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}
