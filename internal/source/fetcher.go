// Package source loads policy rules from an external location so they can
// be refreshed without restarting the server.
package source

import (
	"context"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/policy"
)

type Fetcher interface {
	Fetch(ctx context.Context) ([]policy.Rule, error)
}
