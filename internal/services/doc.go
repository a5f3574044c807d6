// Package services defines the [Backend] interface for the chalet marketplace and implements it over HTTP.
//
// # Backend
//
// [BackendService] is the production implementation. It layers typed operations (chalets, favorites, auth,
// inquiries, the admin dashboard) over [APIService], which performs rate-limited raw JSON requests.
//
// The backend identifies the user by a session cookie. [BackendService] keeps it in a cookie jar the way a
// browser would; [BackendService.SetSessionToken] restores a stored session into the jar.
//
// # Response Normalization
//
// The backend is not consistent about field names. [NormalizeChalet] and [NormalizeUser] accept the known
// spellings (e.g. "_id" or "id", "pricePerNight" or "price") and produce [models.Chalet] and [models.User].
//
// # Google Sign-In
//
// [GoogleService] builds the consent URL and exchanges the authorization code for a Google id_token,
// which the backend accepts at its Google login endpoint.
//
// # Session Tokens
//
// Backend session tokens may be JWTs. [ParseSessionClaims] reads their claims without verifying the
// signature, which is enough to recover the user id, role, and expiry for display and expiry checks.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no session, or the backend rejected it
//   - [shared.ErrForbidden] : the session lacks the admin role
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrChaletNotFound] : chalet ID not found
package services
