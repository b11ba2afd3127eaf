// Package rest is the HTTP client for the chat service contract.
//
// It maps every failed response onto the error taxonomy in internal/errs
// and attaches the session token as a bearer credential on authenticated
// calls. It holds no state beyond the base URL and HTTP client.
package rest
