// Package client talks to a running recall daemon over its HTTP API.
//
// Uploads are streamed as multipart bodies without buffering the file in
// memory. Non-2xx replies surface as *APIError values that also match the
// corresponding services error markers, so callers classify them with
// errors.Is the same way they classify local failures.
package client
