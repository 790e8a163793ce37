package tokens

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/keys"
)

const testIssuer = "http://localhost:4000"

func newHolder(t *testing.T) *keys.Holder {
	t.Helper()
	h, err := keys.NewHolder()
	if err != nil {
		t.Fatalf("NewHolder() unexpected error: %v", err)
	}
	return h
}

func TestJWTTicketFactory_RoundTrip(t *testing.T) {
	holder := newHolder(t)
	factory := NewJWTTicketFactory(holder, testIssuer, time.Minute)

	ticket := &core.Ticket{
		ID: "ticket-1",
		RequestedPermissions: []core.Permission{
			{ResourceID: "http://localhost:3000/alice/private/doc", ResourceScopes: []string{"read", "write"}},
		},
		NecessaryGrants: []core.GrantMarker{core.GrantUnsolvable},
		Precursor:       "ticket-0",
	}

	serialized, err := factory.Serialize(ticket)
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}

	got, err := factory.Deserialize(serialized)
	if err != nil {
		t.Fatalf("Deserialize() unexpected error: %v", err)
	}

	if diff := cmp.Diff(ticket, got, cmpopts.IgnoreFields(core.Ticket{}, "CreatedAt")); diff != "" {
		t.Errorf("round-tripped ticket mismatch (-want +got):\n%s", diff)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Deserialize() dropped the creation time")
	}
}

func TestJWTTicketFactory_SupersededSurvivesRoundTrip(t *testing.T) {
	holder := newHolder(t)
	factory := NewJWTTicketFactory(holder, testIssuer, time.Minute)

	serialized, err := factory.Serialize(&core.Ticket{
		ID:                   "old",
		RequestedPermissions: []core.Permission{{ResourceID: "http://x/r", ResourceScopes: []string{"read"}}},
		SupersededBy:         "new",
	})
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}
	got, err := factory.Deserialize(serialized)
	if err != nil {
		t.Fatalf("Deserialize() unexpected error: %v", err)
	}
	if got.SupersededBy != "new" {
		t.Errorf("SupersededBy = %q, want %q", got.SupersededBy, "new")
	}
}

func TestJWTTicketFactory_RejectsForeignTokens(t *testing.T) {
	holder := newHolder(t)
	factory := NewJWTTicketFactory(holder, testIssuer, time.Minute)

	ticket := &core.Ticket{
		ID:                   "ticket-1",
		RequestedPermissions: []core.Permission{{ResourceID: "http://x/r", ResourceScopes: []string{"read"}}},
	}
	serialized, err := factory.Serialize(ticket)
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"Garbage", "not-a-jwt"},
		{"Tampered Signature", serialized[:len(serialized)-4] + "AAAA"},
		{"Empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := factory.Deserialize(tt.token); !errors.Is(err, core.ErrInvalidToken) {
				t.Errorf("Deserialize() = %v, want ErrInvalidToken", err)
			}
		})
	}

	t.Run("Wrong Issuer", func(t *testing.T) {
		other := NewJWTTicketFactory(holder, "http://other:4000", time.Minute)
		if _, err := other.Deserialize(serialized); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Deserialize() = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		shortLived := NewJWTTicketFactory(holder, testIssuer, time.Nanosecond)
		expired, err := shortLived.Serialize(ticket)
		if err != nil {
			t.Fatalf("Serialize() unexpected error: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		if _, err := factory.Deserialize(expired); !errors.Is(err, core.ErrInvalidToken) {
			t.Errorf("Deserialize() = %v, want ErrInvalidToken", err)
		}
	})
}

func TestJWTTicketFactory_SurvivesRotation(t *testing.T) {
	holder := newHolder(t)
	factory := NewJWTTicketFactory(holder, testIssuer, time.Minute)

	ticket := &core.Ticket{
		ID:                   "ticket-1",
		RequestedPermissions: []core.Permission{{ResourceID: "http://x/r", ResourceScopes: []string{"read"}}},
	}
	serialized, err := factory.Serialize(ticket)
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}
	oldKid := holder.DefaultKeyID()

	if _, err := holder.Rotate(); err != nil {
		t.Fatalf("Rotate() unexpected error: %v", err)
	}

	// old-key tokens verify until the key is revoked
	if _, err := factory.Deserialize(serialized); err != nil {
		t.Errorf("Deserialize() after rotation: %v", err)
	}

	if err := holder.Revoke(oldKid); err != nil {
		t.Fatalf("Revoke() unexpected error: %v", err)
	}
	if _, err := factory.Deserialize(serialized); !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("Deserialize() after revocation = %v, want ErrInvalidToken", err)
	}
}

func TestJWTAccessTokenFactory_RoundTrip(t *testing.T) {
	holder := newHolder(t)
	factory := NewJWTAccessTokenFactory(holder, testIssuer, time.Minute)

	tests := []struct {
		name  string
		token *core.AccessToken
	}{
		{
			name: "With Client",
			token: &core.AccessToken{
				Principal: core.Principal{
					WebID:    "http://example.com/alice#me",
					ClientID: "http://app.example.com",
				},
				Permissions: []core.Permission{
					{ResourceID: "http://localhost:3000/alice/private/doc", ResourceScopes: []string{"read"}},
				},
			},
		},
		{
			name: "Public Client",
			token: &core.AccessToken{
				Principal: core.Principal{WebID: "http://example.com/alice#me"},
				Permissions: []core.Permission{
					{ResourceID: "http://localhost:3000/alice/private/doc", ResourceScopes: []string{"read"}},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serialized, err := factory.Serialize(tt.token)
			if err != nil {
				t.Fatalf("Serialize() unexpected error: %v", err)
			}
			got, err := factory.Deserialize(serialized)
			if err != nil {
				t.Fatalf("Deserialize() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.token, got); diff != "" {
				t.Errorf("round-tripped access token mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequireString_NamesTheClaim(t *testing.T) {
	holder := newHolder(t)
	tickets := NewJWTTicketFactory(holder, testIssuer, time.Minute)
	access := NewJWTAccessTokenFactory(holder, testIssuer, time.Minute)

	// a ticket is a valid signed JWT but lacks the access token claims, so
	// the parse failure must name the missing claim
	ticketSerialized, err := tickets.Serialize(&core.Ticket{
		ID:                   "t",
		RequestedPermissions: []core.Permission{{ResourceID: "http://x/r", ResourceScopes: []string{"read"}}},
	})
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}
	_, err = access.Deserialize(ticketSerialized)
	if err == nil {
		t.Fatal("Deserialize() should fail for a token without webid")
	}
	if !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("Deserialize() = %v, want ErrInvalidToken", err)
	}
	if !strings.Contains(err.Error(), `"webid"`) {
		t.Errorf("error %q does not name the missing claim", err.Error())
	}
}
