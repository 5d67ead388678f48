// Package tls terminates inbound HTTPS for the gateway listener.
//
//	reloader := tls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval)
//	if err := reloader.Start(ctx); err != nil {
//	    return err
//	}
//	tlsConfig, err := tls.ServerConfig(cfg, reloader)
//
// Renewed certificate files are detected by modification time and swapped
// in without restarting the listener. TLS 1.0 and 1.1 are never accepted.
package tls
