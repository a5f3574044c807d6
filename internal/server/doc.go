// Package server runs the local HTTP callback used by "Sign in with Google".
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [LogRequests] and [Recover] are the middleware installed on the callback server.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns internally.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter (CSRF protection), exchanges the authorization code through an
// [Exchanger], and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// # OAuth Flow
//
// [OAuthFlow.Run] binds the callback server, opens the consent page in the browser, and waits under a single
// deadline. It resolves to exactly one [FlowResult]: Success with the credential, Cancelled when the user
// denies consent or interrupts the command, or Failed with a reason (timeout, state mismatch, exchange error).
package server
