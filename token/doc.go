// Package token manages credential issuance and verification against a
// process-wide signing secret, with strict validation semantics suitable for
// per-request authentication paths.
package token
