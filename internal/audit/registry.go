package audit

import (
	"fmt"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/config"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// Build creates the configured auditor. Auditing disabled means noop.
func Build(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file auditor needs a path")
		}
		return NewFileAuditor(cfg.Path)
	case "memory":
		return NewInMemoryAuditor(), nil
	case "", "noop":
		return NewNoopAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown auditor type %q", cfg.Type)
	}
}
