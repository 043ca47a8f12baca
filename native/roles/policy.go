package roles

import "fmt"

// Policy layers the per-operation authorization rules over the registry. All
// checks fail with ErrNotAuthorized so callers surface a single error kind
// for privilege failures.
type Policy struct {
	registry *Registry
}

// NewPolicy constructs a policy gate over the supplied registry.
func NewPolicy(registry *Registry) *Policy {
	return &Policy{registry: registry}
}

func (p *Policy) roleOf(principal [20]byte) (Role, error) {
	if p == nil || p.registry == nil {
		return 0, fmt.Errorf("roles: policy not configured")
	}
	role, ok, err := p.registry.RoleOf(principal)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: no role assigned", ErrNotAuthorized)
	}
	return role, nil
}

// RequireRegistrar permits principals allowed to register projects: super
// admins, admins and project managers. Oracles and auditors are excluded.
func (p *Policy) RequireRegistrar(principal [20]byte) error {
	role, err := p.roleOf(principal)
	if err != nil {
		return err
	}
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleProjectManager:
		return nil
	default:
		return fmt.Errorf("%w: %s may not register projects", ErrNotAuthorized, role)
	}
}

// RequireAdmin permits principals of admin rank or better.
func (p *Policy) RequireAdmin(principal [20]byte) error {
	role, err := p.roleOf(principal)
	if err != nil {
		return err
	}
	if role.Rank() < RoleAdmin.Rank() {
		return fmt.Errorf("%w: admin rank required", ErrNotAuthorized)
	}
	return nil
}

// RequireOracle permits exactly the oracle role. Rank is irrelevant here: a
// super admin does not implicitly gain attestation power.
func (p *Policy) RequireOracle(principal [20]byte) error {
	role, err := p.roleOf(principal)
	if err != nil {
		return err
	}
	if role != RoleOracle {
		return fmt.Errorf("%w: oracle role required", ErrNotAuthorized)
	}
	return nil
}
