// Package tokens persists the session token pair in the local sqlite store.
//
// Two fixed keys are used, KeyAccess and KeyRefresh. The presence of an
// access token is the only signal the client uses to decide that a session
// might exist; no expiry check is performed locally.
package tokens
