package auth

import (
	"todoboard/internal/config"
)

// NewFromConfig creates a provider that keeps its session in the config
// directory. The signing key comes from the environment when set,
// otherwise from a generated key file.
func NewFromConfig(cfg *config.Config) (*Provider, error) {
	var secret []byte
	if cfg.SessionSecret != "" {
		secret = []byte(cfg.SessionSecret)
	} else {
		key, err := LoadOrCreateSecret(cfg.SessionKeyPath())
		if err != nil {
			return nil, err
		}
		secret = key
	}
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return nil, err
	}
	return NewProvider(secret, FileSessionStore{Path: cfg.SessionPath()}, WithTTL(ttl))
}
