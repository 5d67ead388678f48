/*
Package auth validates the caller's bearer credential before any other
pipeline stage runs.

A Gate strips the "Bearer " prefix from the Authorization header and hands
the token to a Validator. Three validators are provided:

  - JWTValidator checks HS256 signatures and the exp, nbf, iss and aud claims
  - APIKeyValidator matches static keys from configuration
  - NoopValidator accepts any present token (development only)

Every failure is reported as an *UnauthorizedError, which matches
ErrUnauthorized with errors.Is. Missing, malformed and rejected credentials
all fail closed.

	v, err := auth.NewValidator(cfg.Security.Auth)
	gate := auth.NewGate(v)
	principal, err := gate.Authenticate(ctx, r.Header.Get("Authorization"))
*/
package auth
