// Package vindecode is the HTTP client for the auto.dev VIN decode API.
//
// A decode is a single GET request:
//
//	GET <base>/vin/<vin>?apiKey=<key>
//
// The VIN is path-escaped and the key is query-escaped. The client sends the
// request exactly once. It does not retry, and it sets no timeout of its own,
// so the caller's context is the only way to cancel a request.
//
// # Responses
//
// Any 2xx response whose body is a JSON object is a success. The top-level
// fields are kept in response order and nested values are kept verbatim (see
// Payload). Other outcomes are reported as a *DecodeError:
//   - KindTransport: connection failures and non-2xx responses,
//     "API request failed: <status text>"
//   - KindParse: a 2xx body that is not a JSON object,
//     "Failed to parse API response: <parser message>"
//
// # Credentials
//
// The API key travels in the query string. It never appears in error values:
// transport failures keep the underlying cause but drop the request URL.
package vindecode
