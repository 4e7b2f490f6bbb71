package resolvers

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/booksaloon/backend/internal/graphql/executor"
	"github.com/booksaloon/backend/internal/graphql/loaders"
	"github.com/booksaloon/backend/internal/graphql/schema"
)

// NewHandler builds the /graphql endpoint: gqlgen's transports and query
// cache in front of the executor, with per-request booking loaders.
func NewHandler(resolver *Resolver, bookings loaders.BookingReader) (http.Handler, error) {
	s, err := schema.Load()
	if err != nil {
		return nil, err
	}

	srv := handler.New(executor.New(s, resolver.Resolvers()))
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.SetQueryCache(lru.New[*ast.QueryDocument](1000))

	return loaders.Middleware(bookings)(srv), nil
}
