package claims

import (
	"context"
	"testing"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/config"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/store"
)

func TestBuildPipeline(t *testing.T) {
	ctx := context.Background()
	derivations := store.NewDerivationRegistry(nil)

	t.Run("Registers Configured Formats", func(t *testing.T) {
		pipeline, err := BuildPipeline(ctx, []config.VerifierConfig{
			{Format: core.FormatUnsecured, Type: "unsecured"},
			{Format: core.FormatMeta + "#kv", Type: "keyvalue"},
		}, "http://localhost:4000", derivations)
		if err != nil {
			t.Fatalf("BuildPipeline() failed: %v", err)
		}

		formats := pipeline.Formats()
		if len(formats) != 2 || formats[0] != core.FormatUnsecured {
			t.Errorf("Formats() = %v, want the configured order", formats)
		}
	})

	t.Run("Wraps In IRI Normalizer", func(t *testing.T) {
		pipeline, err := BuildPipeline(ctx, []config.VerifierConfig{
			{Format: core.FormatUnsecured, Type: "unsecured"},
		}, "http://localhost:4000", derivations)
		if err != nil {
			t.Fatalf("BuildPipeline() failed: %v", err)
		}

		// a relative webid in the claim token comes out rooted at the base url
		set, err := pipeline.Verify(ctx, core.Credential{Token: "alice", Format: core.FormatUnsecured})
		if err != nil {
			t.Fatalf("Verify() failed: %v", err)
		}
		if set.WebID != "http://localhost:4000/alice" {
			t.Errorf("WebID = %q, want the rooted IRI", set.WebID)
		}
	})

	t.Run("Unknown Type", func(t *testing.T) {
		if _, err := BuildPipeline(ctx, []config.VerifierConfig{
			{Format: "x", Type: "carrier-pigeon"},
		}, "http://localhost:4000", derivations); err == nil {
			t.Error("BuildPipeline() should reject unknown verifier types")
		}
	})
}

func TestKeyValueVerifier(t *testing.T) {
	set, err := NewKeyValueVerifier().Verify(context.Background(), core.Credential{
		Token:  "opaque-value",
		Format: "urn:example:format",
	})
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if set.Extra["urn:example:format"] != "opaque-value" {
		t.Errorf("Extra = %v, want the token keyed by format", set.Extra)
	}
}
