package genesis

import (
	"fmt"

	"pifpchain/native/roles"
)

// Apply seeds the supplied role registry from a validated genesis spec: the
// registry is initialized with the super admin, then every grant in the
// document is issued on the super admin's behalf. Applying to an already
// initialized registry fails.
func Apply(spec *GenesisSpec, registry *roles.Registry) error {
	if spec == nil {
		return fmt.Errorf("genesis spec must not be nil")
	}
	if registry == nil {
		return fmt.Errorf("role registry must not be nil")
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := registry.Init(spec.superAdminAddr); err != nil {
		return err
	}
	for _, g := range spec.grants {
		if err := registry.Grant(spec.superAdminAddr, g.principal, g.role); err != nil {
			return fmt.Errorf("grant %s: %w", g.role, err)
		}
	}
	return nil
}
