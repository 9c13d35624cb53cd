// Package api provides the resilient HTTP client for the KeyBot REST API.
//
// # Overview
//
// Every call the dashboard and CLI make to the KeyBot backend goes through a
// single *Client. The client hides host selection, bearer authentication,
// per-attempt timeouts, retries and user-facing error reporting from callers:
// a call either returns the decoded payload or fails with an *Error, and a
// failed call produces exactly one Toast on the configured Notifier unless
// the caller canceled it.
//
// # Hosts
//
// A Client is built once per process with two immutable base addresses:
//
//   - Primary: the configured API base (defaults to "<origin>/api")
//   - Fallback: the application's own origin ("<origin>/")
//
// Routes are server-relative ("/customers/42") and are joined onto whichever
// host an attempt targets.
//
// # Request Handling
//
// Request (and Get, Post, Put, Delete) perform one logical call:
//
//   - Content-Type and Accept default to application/json
//   - User-Agent is keybot/0.1, X-Request-ID is a fresh UUID per logical call
//   - Caller headers (WithHeader, WithHeaders) override the defaults
//   - Authorization: Bearer <token> is added when the TokenSource has a token
//   - Each attempt has its own 30s deadline unless WithTimeout overrides it
//
// # Retry State Machine
//
// A logical call moves through {Attempting(host, retries), Switching,
// Succeeded, Failed}. The transitions are pure functions of the current state
// and the outcome of the last attempt:
//
//	outcome                     state                         next
//	success                     any                           Succeeded
//	HTTP status / timeout /     any                           Failed
//	decode / canceled
//	transport, retries < 2      Attempting(primary, r)        Attempting(primary, r+1) after (r+1)*1s
//	transport, 2 <= retries < 3 Attempting(primary, r)        Switching -> Attempting(fallback, r+1), no delay
//	transport, retries < 3      Attempting(fallback, r)       Attempting(fallback, r+1) after (r+1)*1s
//	transport, retries == 3     any                           Failed
//
// At most MaxRetries+1 attempts are made, the switch to the fallback host
// happens at most once, and the call never returns to the primary host after
// switching.
//
// # Uploads
//
// UploadFile streams a multipart/form-data body with the file under the
// "file" field. When the file size is known the body length is computed up
// front and progress is reported as round(sent*100/total); when it is not,
// the body is sent chunked and no progress is reported. A failed primary
// attempt is followed by exactly one fallback attempt.
//
// # Error Handling
//
// Failures are returned as *Error with a Kind:
//
//   - KindTransport: no response received (retried)
//   - KindTimeout: per-attempt deadline exceeded (not retried)
//   - KindStatus: 4xx/5xx response (not retried)
//   - KindDecode: a 2xx body that is not valid JSON for the destination
//   - KindCanceled: the caller's context ended the call
//   - KindRequest: the request could not be built
//   - KindExhausted: the attempt budget ran out with nothing more specific
//
// The user-facing message is the response body's "message" field, else the
// underlying error text, else a generic message. It is delivered to the
// Notifier as "API Error: <message>" or "Upload Error: <message>". A call
// that ends with KindCanceled is returned without a toast: the caller chose
// to stop it.
//
// # Thread Safety
//
// A Client is safe for concurrent use. Its configuration never changes after
// New returns and each call keeps its own retry state.
package api
