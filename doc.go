// Package auth is the authentication core of the blog backend: bcrypt
// credential storage, HS256 token issuance and verification, a fiber identity
// resolver and a role gate for administrator-only operations.
//
// Session flows:
//   - Auther implements Signup, Login, ChangePassword and profile updates on
//     top of the Principals repository. Signup only confirms account creation;
//     Login is the single flow that issues tokens.
//
// Identity resolution:
//   - RouteAuthenticator.ProtectedRoute extracts the bearer token (or the token
//     cookie when configured), verifies it and attaches the Principal to the
//     request. Every rejection renders as 401 {"message":"please authenticate"}
//     while the cause is logged.
//   - RouteAuthenticator.RequireRole gates routes with the AccessPolicy and
//     must be mounted after ProtectedRoute.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     signup, login, password and deletion events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package auth
