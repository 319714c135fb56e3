// Package authn resolves registry credentials for remote operations
// from a docker-style auth file.
package authn

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/docker/cli/cli/config"
	"github.com/docker/cli/cli/config/types"
	"github.com/go-logr/logr"
	craneauthn "github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"

	"github.com/nandakiran-r/TestPiper/internal/log"
)

type releaseKeychain struct {
	dockercfg string
	ctx       context.Context
}

type KeychainOption func(*releaseKeychain)

// WithDockerConfig configures the keychain with the auth file at path
// dockercfg. Pass an empty string to unset a previously configured file.
func WithDockerConfig(dockercfg string) KeychainOption {
	return func(k *releaseKeychain) {
		k.dockercfg = dockercfg
	}
}

var keychain = releaseKeychain{
	ctx: context.Background(),
}

// Keychain returns the shared keychain as a craneauthn.Keychain. It is
// a singleton: options overwrite the single instance, and calling with
// no options returns it as already configured.
func Keychain(ctx context.Context, opts ...KeychainOption) craneauthn.Keychain {
	for _, opt := range opts {
		opt(&keychain)
	}

	keychain.ctx = ctx

	return &keychain
}

// Resolve returns an Authenticator with credentials, or Anonymous when
// no suitable credentials exist for the target. With no auth file
// configured, Anonymous is assumed. A configured file that cannot be
// read is an error; os.IsNotExist can be returned.
func (k *releaseKeychain) Resolve(target craneauthn.Resource) (craneauthn.Authenticator, error) {
	logger := logr.FromContextOrDiscard(k.ctx)

	logger.V(log.TRC).Info("resolving registry credentials", "target", target.String())

	if k.dockercfg == "" {
		return craneauthn.Anonymous, nil
	}

	r, err := os.Open(k.dockercfg)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("could not find authfile: %s: %w", k.dockercfg, err)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open authfile: %s: %v", k.dockercfg, err)
	}

	defer r.Close()
	cf, err := config.LoadFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not load authfile from reader: %v", err)
	}

	authFileTargets := []string{
		target.String(),
		target.RegistryStr(),
	}

	// Logging into docker.io with podman leaves a docker.io key in the
	// auth file, while crane rewrites the registry to index.docker.io.
	// Check docker.io/* spellings of the target too.
	if strings.Contains(name.DefaultRegistry, target.RegistryStr()) {
		authFileTargets = append(authFileTargets,
			strings.Replace(target.String(), name.DefaultRegistry, "docker.io", 1),
			strings.Replace(target.RegistryStr(), name.DefaultRegistry, "docker.io", 1),
		)
	}

	var cfg, empty types.AuthConfig
	for _, key := range authFileTargets {
		if key == name.DefaultRegistry {
			key = craneauthn.DefaultAuthKey
		}

		cfg, err = cf.GetAuthConfig(key)
		if err != nil {
			return nil, fmt.Errorf("could not get auth config: %v", err)
		}
		if cfg != empty {
			break
		}
	}
	if cfg == empty {
		return craneauthn.Anonymous, nil
	}

	return craneauthn.FromConfig(craneauthn.AuthConfig{
		Username:      cfg.Username,
		Password:      cfg.Password,
		Auth:          cfg.Auth,
		IdentityToken: cfg.IdentityToken,
		RegistryToken: cfg.RegistryToken,
	}), nil
}
