// Package client talks to the garagekeeper backend.
//
// # Overview
//
// The package provides:
//  1. The REST contract as small interfaces (AuthAPI, CarsAPI, UsersAPI and
//     the umbrella Client), so stores depend only on what they call.
//  2. HTTPClient, the net/http implementation. It attaches the persisted
//     access token as a Bearer header, stamps every request with an
//     X-Request-ID and maps HTTP statuses onto the error taxonomy below.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     sqlite file that keeps the token pair between runs.
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind:
//
//	KindNetwork     transport failures and 5xx responses
//	KindValidation  4xx responses with field detail
//	KindAuth        401/403 and rejected credentials
//	KindNotFound    404, e.g. a stale id
//
// Match with errors.Is against ErrNetwork, ErrValidation, ErrUnauthorized or
// ErrNotFound, or errors.As to read Status and Fields. Nothing is retried and
// a 401 never triggers a token refresh.
package client
