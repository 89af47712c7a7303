// Package httputil provides shared HTTP response and request helpers.
//
// All handlers use these helpers so every endpoint speaks the same JSON
// envelope: successful responses carry the payload directly, errors carry
// {"error": "..."} with an optional machine-readable code.
package httputil
