// Package context provides request-scoped memoization for page assembly.
//
// One page render often needs the same API data more than once: the exchange
// user list needs every exchange to label its rows, and the filter select
// above it needs them again. The HTTP layer attaches a RequestContext to each
// request, and services fetch through it so the API sees one call:
//
//	exchanges, err := appctx.Fetch(ctx, "exchanges", s.client.List)
//
// Without a RequestContext in ctx, Fetch simply calls through.
package context
