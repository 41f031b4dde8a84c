// Package handler exposes the JSON API: login, logout, identity
// introspection, and the summarization endpoints, assembled into a chi
// router with the authorization gate outermost.
//
// Handlers stay thin: decode, call the engine or the summarize service, map
// the error onto a status code, encode. Authentication failures always
// render the same 401 body regardless of cause.
package handler
