package tls

import (
	"crypto/tls"
	"fmt"

	"estech/inference-gateway/pkg/config"
)

// ServerConfig builds the listener TLS configuration. Certificates are
// served through reloader so that renewed files are picked up without a
// restart. It returns nil when TLS is disabled.
func ServerConfig(cfg config.TLSConfig, reloader *CertificateReloader) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if reloader == nil {
		return nil, fmt.Errorf("certificate reloader is required when TLS is enabled")
	}
	version, err := ParseVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:     version,
		GetCertificate: reloader.GetCertificate,
	}, nil
}

// ParseVersion maps "1.2" and "1.3" to protocol constants. An empty string
// selects TLS 1.3; older versions are rejected.
func ParseVersion(v string) (uint16, error) {
	switch v {
	case "1.3", "":
		return tls.VersionTLS13, nil
	case "1.2":
		return tls.VersionTLS12, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q: must be 1.2 or 1.3", v)
	}
}
