// Package client talks to the address book REST API.
//
// HTTPClient keeps the current access/refresh token pair in memory, attaches
// the access token to authenticated calls and, when the server reports an
// expired access token, rotates the pair once via /auth/refresh and retries.
// Listeners registered with OnTokens see every new pair so callers can
// persist the refresh token.
//
// Error responses ({"error": code, "detail": message}) are returned as
// *APIError, which unwraps to the matching sentinel from internal/common, so
// callers use errors.Is. Transport failures wrap ErrUnavailable.
//
// InitDatabase and RunMigrations bootstrap the local SQLite session store.
package client
