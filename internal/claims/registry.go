package claims

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/config"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// BuildPipeline assembles the typed verifier from configuration. Every
// verifier is wrapped in the IRI normalizer so relative claim values come
// out as IRIs under the server's base URL.
func BuildPipeline(
	ctx context.Context,
	cfgs []config.VerifierConfig,
	baseURL string,
	derivations DerivationTracker,
) (*TypedVerifier, error) {
	pipeline := NewTypedVerifier()

	for _, cfg := range cfgs {
		verifier, err := buildVerifier(ctx, cfg, baseURL, derivations)
		if err != nil {
			return nil, fmt.Errorf("building verifier for format %q: %w", cfg.Format, err)
		}
		pipeline.Register(cfg.Format, NewIRINormalizingVerifier(verifier, baseURL))
	}
	return pipeline, nil
}

func buildVerifier(
	ctx context.Context,
	cfg config.VerifierConfig,
	baseURL string,
	derivations DerivationTracker,
) (core.Verifier, error) {
	switch cfg.Type {
	case "jwt":
		var jwtCfg BearerJWTConfig
		if err := mapstructure.Decode(cfg.Config, &jwtCfg); err != nil {
			return nil, fmt.Errorf("decoding jwt verifier config: %w", err)
		}
		return NewBearerJWTVerifier(ctx, jwtCfg)
	case "oidc":
		var oidcCfg OIDCConfig
		if err := mapstructure.Decode(cfg.Config, &oidcCfg); err != nil {
			return nil, fmt.Errorf("decoding oidc verifier config: %w", err)
		}
		if oidcCfg.BaseURL == "" {
			oidcCfg.BaseURL = baseURL
		}
		return NewOIDCVerifier(oidcCfg, derivations), nil
	case "unsecured":
		return NewUnsecuredVerifier(), nil
	case "keyvalue":
		return NewKeyValueVerifier(), nil
	default:
		return nil, fmt.Errorf("unknown verifier type %q", cfg.Type)
	}
}
