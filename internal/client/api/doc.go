// Package api is the authenticated resource client of the user-management
// service.
//
// # Overview
//
// Client sends JSON (or multipart) requests to a configured base URL and
// always includes the credential cookies kept in its CredentialJar. Two jars
// are provided: MemoryJar and PersistentJar, the latter mirroring cookies
// into the local metadata store so a restarted client stays signed in.
//
// # Error Handling
//
// Outcomes are classified once, here, and matched with errors.Is/As:
//
//   - ErrUnauthorized: HTTP 401. The registered Invalidator has already been
//     called (unless Request.SkipInvalidate was set).
//   - ErrTransport / *TransportError: no response (DNS, refused, timeout).
//   - *StatusError: built by callers from Response.Err for other non-2xx
//     statuses; the session is not touched.
//
// UserMessage maps any of them to the text shown to the user.
package api
