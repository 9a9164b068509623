package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

// ErrNoSigningSecret is returned outside dev/test when no secret is configured.
var ErrNoSigningSecret = errors.New("no signing secret configured (set AUTH_SIGNING_SECRET or AUTH_SIGNING_SECRET_FILE)")

// InitSigningKey loads the shared HS256 key.
//
// Sources, in order:
//   - AUTH_SIGNING_SECRET
//   - the file named by AUTH_SIGNING_SECRET_FILE
//   - in dev/test only, a random secret generated at startup. Tokens
//     issued with it become invalid when the service restarts.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.HMACKey, error) {
	secret := cfg.SigningSecret
	source := "env"

	if secret == "" && cfg.SigningSecretFile != "" {
		raw, err := os.ReadFile(cfg.SigningSecretFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing secret file: %w", err)
		}
		secret = strings.TrimSpace(string(raw))
		source = "file"
	}

	if secret == "" {
		if !cfg.IsDevelopment() {
			return nil, ErrNoSigningSecret
		}
		secret = cryptox.MustGenerateToken(cryptox.TokenSize512)
		source = "ephemeral"
		logger.Warn("using an ephemeral signing secret; tokens will not survive a restart")
	}

	key, err := jwtx.NewHMACKey([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("invalid signing secret (%s): %w", source, err)
	}

	logger.Info("signing key loaded",
		"alg", "HS256",
		"source", source,
		"fingerprint", key.Fingerprint(),
	)

	return key, nil
}
