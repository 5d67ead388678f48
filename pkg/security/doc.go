/*
Package security groups the gateway's caller-facing protections.

  - auth: API key and JWT authentication of incoming requests
  - secrets: ${secret:name} resolution for credentials held in config
  - tls: inbound TLS termination with certificate hot reload

Credentials are resolved once at startup:

	resolver, err := secrets.NewFromConfig(cfg.Security.Secrets)
	if err != nil {
		return err
	}
	if err := resolver.ResolveAuth(ctx, &cfg.Security.Auth); err != nil {
		return err
	}
*/
package security
