// Package option builds crane options for remote registry operations.
package option

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/nandakiran-r/TestPiper/internal/authn"
)

// CraneConfig is the subset of runtime configuration remote operations
// need.
type CraneConfig interface {
	CraneDockerConfig() string
	CraneInsecure() bool
}

// GenerateCraneOptions prepares crane runtime options: context,
// credentials from the configured auth file, and a single retry.
func GenerateCraneOptions(ctx context.Context, craneConfig CraneConfig) []crane.Option {
	options := []crane.Option{
		crane.WithContext(ctx),
		crane.WithAuthFromKeychain(
			authn.Keychain(
				ctx,
				authn.WithDockerConfig(craneConfig.CraneDockerConfig()),
			),
		),
		retryOnceAfter(5 * time.Second),
	}

	if craneConfig.CraneInsecure() {
		// WithTransport is a workaround to reach HTTPS registries with
		// self-signed or untrusted certificates. See
		// https://github.com/google/go-containerregistry/issues/1553.
		rt := remote.DefaultTransport.(*http.Transport).Clone()
		rt.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint: gosec
		}

		options = append(options, crane.Insecure, crane.WithTransport(rt))
	}

	return options
}

// retryOnceAfter is a crane option that retries once after t duration.
func retryOnceAfter(t time.Duration) crane.Option {
	return func(o *crane.Options) {
		o.Remote = append(o.Remote, remote.WithRetryBackoff(remote.Backoff{
			Duration: t,
			Factor:   1.0,
			Jitter:   0.1,
			Steps:    2,
		}))
	}
}
