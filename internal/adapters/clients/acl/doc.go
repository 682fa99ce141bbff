// Package acl is the anti-corruption layer between the backoffice and the
// Zapallo API. It owns the API's snake_case DTOs and never lets them leave
// the package: every response is checked and translated into a domain record,
// and every client failure is mapped onto a domain error.
//
// # Accessors
//
//   - [ExchangeClient] manages /exchanges
//   - [ExchangeUserClient] manages /exchange_users
//   - [ExchangeCardClient] manages /exchange_cards
//
// Each offers List, Get, Create, Update and Delete, and doubles as a readiness
// health check for the API.
//
// # Error mapping
//
// [MapError] translates a [clients.APIError] by kind:
//
//   - Validation (400) → [domain.ErrValidation], keeping field messages
//   - NotFound (404) → [domain.ErrNotFound]
//   - Conflict (409) → [domain.ErrConflict]
//   - 401/403 → [domain.ErrForbidden]
//   - other 4xx → [domain.ErrValidation]
//   - Network, Timeout, 429 and 5xx → [domain.ErrUnavailable]
//
// The client error stays reachable as the cause, so callers can still
// errors.As into *clients.APIError for the status code or raw payload.
//
// A response that decodes but fails the record checks (a missing id, an
// unparsable timestamp) is reported as [domain.ErrUnavailable] wrapping
// [ErrInvalidRecord].
package acl
