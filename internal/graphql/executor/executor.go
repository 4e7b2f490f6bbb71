// Package executor runs parsed GraphQL operations against the schema with
// field resolvers registered by name. Fields without a resolver are read
// from the parent's JSON form, so entity json tags define the default
// mapping (rankingScore reads ranking_score).
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/booksaloon/backend/internal/infrastructure/observability"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

var errNullValue = errors.New("must not be null")

// FieldResolver produces the value of one field given its parent value
type FieldResolver func(ctx context.Context, parent any, args map[string]any) (any, error)

// Resolvers maps "Type.field" to its resolver
type Resolvers map[string]FieldResolver

type executableSchema struct {
	// Complexity limits are not configured; the embedded interface is never
	// consulted for it.
	graphql.ExecutableSchema

	schema    *ast.Schema
	resolvers Resolvers
}

// New returns an executable schema for gqlgen's handler
func New(schema *ast.Schema, resolvers Resolvers) graphql.ExecutableSchema {
	return &executableSchema{schema: schema, resolvers: resolvers}
}

func (es *executableSchema) Schema() *ast.Schema {
	return es.schema
}

func (es *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	if opCtx.Operation.Operation != ast.Query {
		return graphql.OneShot(graphql.ErrorResponse(ctx, "only queries are supported"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		run := &execution{schema: es, opCtx: opCtx}
		data, ok := run.executeObject(ctx, es.schema.Query, opCtx.Operation.SelectionSet, nil, nil)

		var raw json.RawMessage = []byte("null")
		if ok {
			encoded, err := json.Marshal(data)
			if err != nil {
				return graphql.ErrorResponse(ctx, "failed to encode response")
			}
			raw = encoded
		}
		return &graphql.Response{Data: raw, Errors: run.errors}
	}
}

type execution struct {
	schema *executableSchema
	opCtx  *graphql.OperationContext

	mu     sync.Mutex
	errors gqlerror.List
}

// executeObject resolves a selection set on one object. It reports false
// when a non-null field came back null, which nulls the object itself.
func (e *execution) executeObject(ctx context.Context, def *ast.Definition, selSet ast.SelectionSet, parent any, path ast.Path) (*object, bool) {
	out := &object{}
	var projection map[string]any

	for _, field := range graphql.CollectFields(e.opCtx, selSet, []string{def.Name}) {
		if field.Name == "__typename" {
			out.set(field.Alias, def.Name)
			continue
		}

		fieldDef := def.Fields.ForName(field.Name)
		if fieldDef == nil {
			continue
		}
		fieldPath := appendPath(path, ast.PathName(field.Alias))

		var (
			value any
			err   error
		)
		if resolve, ok := e.schema.resolvers[def.Name+"."+field.Name]; ok {
			value, err = resolve(ctx, parent, field.ArgumentMap(e.opCtx.Variables))
		} else {
			if projection == nil {
				projection, err = project(parent)
			}
			if err == nil {
				value = projection[snakeCase(field.Name)]
			}
		}
		if err != nil {
			e.addError(ctx, fieldPath, err)
			if fieldDef.Type.NonNull {
				return nil, false
			}
			out.set(field.Alias, nil)
			continue
		}

		completed, ok := e.completeValue(ctx, fieldDef.Type, field.Selections, value, fieldPath)
		if !ok {
			return nil, false
		}
		out.set(field.Alias, completed)
	}
	return out, true
}

func (e *execution) completeValue(ctx context.Context, typ *ast.Type, selSet ast.SelectionSet, value any, path ast.Path) (any, bool) {
	if isNil(value) {
		if typ.NonNull {
			e.addError(ctx, path, errNullValue)
			return nil, false
		}
		return nil, true
	}

	if typ.Elem != nil {
		items, ok := e.completeList(ctx, typ.Elem, selSet, value, path)
		if !ok {
			if typ.NonNull {
				return nil, false
			}
			return nil, true
		}
		return items, true
	}

	def := e.schema.schema.Types[typ.NamedType]
	if def == nil {
		e.addError(ctx, path, apperrors.NewInternalError("unknown type "+typ.NamedType, nil))
		return nil, !typ.NonNull
	}

	switch def.Kind {
	case ast.Object:
		obj, ok := e.executeObject(ctx, def, selSet, value, path)
		if !ok {
			if typ.NonNull {
				return nil, false
			}
			return nil, true
		}
		return obj, true
	case ast.Scalar, ast.Enum:
		scalar, err := coerceScalar(typ.NamedType, value)
		if err != nil {
			e.addError(ctx, path, err)
			if typ.NonNull {
				return nil, false
			}
			return nil, true
		}
		return scalar, true
	}

	e.addError(ctx, path, apperrors.NewInternalError("unsupported kind for "+typ.NamedType, nil))
	return nil, !typ.NonNull
}

// completeList resolves object elements concurrently so field loaders
// called by sibling elements land in the same batch.
func (e *execution) completeList(ctx context.Context, elem *ast.Type, selSet ast.SelectionSet, value any, path ast.Path) ([]any, bool) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		e.addError(ctx, path, apperrors.NewInternalError("expected a list", nil))
		return nil, false
	}

	n := rv.Len()
	items := make([]any, n)
	valid := make([]bool, n)

	complete := func(i int) {
		items[i], valid[i] = e.completeValue(ctx, elem, selSet, rv.Index(i).Interface(), appendPath(path, ast.PathIndex(i)))
	}

	def := e.schema.schema.Types[elem.Name()]
	if def != nil && def.Kind == ast.Object && n > 1 {
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				complete(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := 0; i < n; i++ {
			complete(i)
		}
	}

	for _, ok := range valid {
		if !ok {
			return nil, false
		}
	}
	return items, true
}

func (e *execution) addError(ctx context.Context, path ast.Path, err error) {
	gqlErr := &gqlerror.Error{Path: path}

	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, errNullValue):
		gqlErr.Message = err.Error()
	case errors.As(err, &appErr) && isClientError(appErr.Type):
		gqlErr.Message = appErr.Message
		gqlErr.Extensions = map[string]any{"code": string(appErr.Type)}
	default:
		observability.LoggerFromContext(ctx).Error().Err(err).Str("path", path.String()).Msg("graphql field failed")
		gqlErr.Message = "internal server error"
		gqlErr.Extensions = map[string]any{"code": string(apperrors.TypeOf(err))}
	}

	e.mu.Lock()
	e.errors = append(e.errors, gqlErr)
	e.mu.Unlock()
}

func isClientError(t apperrors.ErrorType) bool {
	switch t {
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeValidation, apperrors.ErrorTypeConflict:
		return true
	}
	return false
}

func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	next := make(ast.Path, len(path), len(path)+1)
	copy(next, path)
	return append(next, elem)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
