package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
)

// initSecrets loads the password pepper and the session signing key,
// generating either on first start. Both files must survive restarts:
// losing the pepper invalidates every password and losing the key signs
// everyone out.
func initSecrets(cfg Config, logger *slog.Logger) (*cryptox.PasswordHasher, *jwtx.EdDSASigner, error) {
	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	key, err := cryptox.LoadOrCreateEd25519Key(cfg.SessionKeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session key: %w", err)
	}

	signer, err := jwtx.NewEdDSASigner(key, cfg.SessionIssuer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}

	logger.Info("session signing key loaded",
		"algorithm", "EdDSA",
		"kid", signer.KID(),
		"issuer", cfg.SessionIssuer,
	)

	return cryptox.NewPasswordHasher(pepper), signer, nil
}
