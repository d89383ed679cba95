// Package services implements the REST clients for the three homedeck backends.
//
// # Client
//
// [Client] is the shared request helper. Every call classifies its failure into the
// taxonomy from the shared package so callers can branch with errors.Is:
//   - [shared.ErrTransport] : the request never produced a response, or the body could not be read
//   - [shared.ErrApplication] : non-2xx status; the server's {"error": "..."} message is kept in [APIError]
//   - [shared.ErrNotFound] : HTTP 404, also an [APIError]
//   - [shared.ErrDecode] : a 2xx response whose body is not the expected JSON
//
// No call is retried.
//
// # Services
//
//   - [LinkService] : link-tree links, settings, export and import
//   - [DeviceService] : Wake-on-LAN devices, wake and shutdown actions
//   - [DownloadService] : score download submission and status polling
//   - [APIService] : raw requests for debugging any of the above
//
// [NewHTTPClient] builds the shared [http.Client] with a token-bucket limiter and an
// X-Request-ID header on every outgoing request.
package services
