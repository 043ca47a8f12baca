package genesis

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"pifpchain/native/roles"
)

// GenesisSpec seeds the role registry of a fresh network: the initial super
// admin plus any further role grants issued on its behalf.
type GenesisSpec struct {
	SuperAdmin string              `json:"superAdmin"`
	Roles      map[string][]string `json:"roles,omitempty"` // role name -> []addr

	superAdminAddr [20]byte
	grants         []grant
}

type grant struct {
	role      roles.Role
	principal [20]byte
}

// LoadGenesisSpec reads and validates the genesis document at path. Unknown
// fields are rejected.
func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	var spec GenesisSpec
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse genesis spec %q: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the document and caches the decoded addresses and grants.
func (s *GenesisSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("genesis spec must not be nil")
	}
	addr, err := parseAddress(s.SuperAdmin)
	if err != nil {
		return fmt.Errorf("superAdmin: %w", err)
	}
	s.superAdminAddr = addr

	names := make([]string, 0, len(s.Roles))
	for name := range s.Roles {
		names = append(names, name)
	}
	sort.Strings(names)

	s.grants = s.grants[:0]
	seen := map[[20]byte]string{s.superAdminAddr: "super_admin"}
	for _, name := range names {
		role, err := roles.ParseRole(name)
		if err != nil {
			return err
		}
		if role == roles.RoleSuperAdmin {
			return fmt.Errorf("roles: super_admin may not appear in the grants map; use superAdmin")
		}
		for _, encoded := range s.Roles[name] {
			principal, err := parseAddress(encoded)
			if err != nil {
				return fmt.Errorf("roles.%s: %w", name, err)
			}
			if prior, dup := seen[principal]; dup {
				return fmt.Errorf("roles.%s: %s already assigned %s", name, encoded, prior)
			}
			seen[principal] = name
			s.grants = append(s.grants, grant{role: role, principal: principal})
		}
	}
	return nil
}

// SuperAdminAddress returns the decoded initial super admin.
func (s *GenesisSpec) SuperAdminAddress() [20]byte {
	return s.superAdminAddr
}

func parseAddress(encoded string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(encoded), "0x")
	if trimmed == "" {
		return addr, fmt.Errorf("address must not be empty")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", encoded, err)
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("invalid address %q: want %d bytes, got %d", encoded, len(addr), len(raw))
	}
	copy(addr[:], raw)
	if addr == ([20]byte{}) {
		return addr, fmt.Errorf("address must not be zero")
	}
	return addr, nil
}
