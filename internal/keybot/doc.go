// Package keybot exposes the KeyBot REST endpoints as typed services.
//
// Every service is a thin layer over a Requester (normally *api.Client), so
// retries, host fallback and error toasts apply uniformly. Services decode the
// API's envelopes ({customer: ...}, {notes: [...]}, {success, data}) and turn
// a 2xx answer with success=false into an error wrapping ErrRejected.
package keybot
