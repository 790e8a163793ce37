package tokens

import (
	"encoding/json"
	"time"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// DefaultTicketTTL is how long a ticket stays exchangeable.
const DefaultTicketTTL = 30 * time.Minute

// JWTTicketFactory signs tickets with the holder's default key. The audience
// is the reserved platform value, the issuer is this server's identifier.
type JWTTicketFactory struct {
	holder core.KeyHolder
	issuer string
	ttl    time.Duration
}

var _ core.TicketFactory = (*JWTTicketFactory)(nil)

func NewJWTTicketFactory(holder core.KeyHolder, issuer string, ttl time.Duration) *JWTTicketFactory {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &JWTTicketFactory{holder: holder, issuer: issuer, ttl: ttl}
}

func (f *JWTTicketFactory) Serialize(ticket *core.Ticket) (string, error) {
	claims := baseClaims(f.issuer, core.SolidAudience, ticket.ID, f.ttl)
	claims["permissions"] = permissionClaims(ticket.RequestedPermissions)
	if len(ticket.NecessaryGrants) > 0 {
		grants := make([]string, len(ticket.NecessaryGrants))
		for i, g := range ticket.NecessaryGrants {
			grants[i] = string(g)
		}
		claims["necessary_grants"] = grants
	}
	if ticket.Precursor != "" {
		claims["precursor"] = ticket.Precursor
	}
	if ticket.SupersededBy != "" {
		claims["superseded_by"] = ticket.SupersededBy
	}
	return sign(f.holder, claims)
}

func (f *JWTTicketFactory) Deserialize(serialized string) (*core.Ticket, error) {
	claims, err := parse(f.holder, f.issuer, core.SolidAudience, serialized)
	if err != nil {
		return nil, err
	}

	id, err := requireString(claims, "jti")
	if err != nil {
		return nil, err
	}
	perms, err := requirePermissions(claims, "permissions")
	if err != nil {
		return nil, err
	}
	precursor, err := optionalString(claims, "precursor")
	if err != nil {
		return nil, err
	}
	supersededBy, err := optionalString(claims, "superseded_by")
	if err != nil {
		return nil, err
	}

	ticket := &core.Ticket{
		ID:                   id,
		RequestedPermissions: perms,
		Precursor:            precursor,
		SupersededBy:         supersededBy,
	}

	if raw, ok := claims["necessary_grants"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, core.NewInvalidTokenError("claim %q must be a list of strings", "necessary_grants")
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, core.NewInvalidTokenError("claim %q must be a list of strings", "necessary_grants")
			}
			ticket.NecessaryGrants = append(ticket.NecessaryGrants, core.GrantMarker(s))
		}
	}

	if iat, ok := claims["iat"].(float64); ok {
		ticket.CreatedAt = time.Unix(int64(iat), 0)
	}

	return ticket, nil
}

// permissionClaims keeps the wire shape independent of the domain struct tags.
func permissionClaims(perms []core.Permission) []any {
	buf, err := json.Marshal(perms)
	if err != nil {
		// permissions are plain strings, this cannot fail
		return []any{}
	}
	var out []any
	_ = json.Unmarshal(buf, &out)
	if out == nil {
		out = []any{}
	}
	return out
}
