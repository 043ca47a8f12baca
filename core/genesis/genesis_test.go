package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"pifpchain/native/roles"
)

type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.data[string(key)] = encoded
	return nil
}

func (m *memoryStore) KVGet(key []byte, out interface{}) (bool, error) {
	encoded, ok := m.data[string(key)]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memoryStore) KVDelete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func writeSpec(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write genesis doc: %v", err)
	}
	return path
}

const validDoc = `{
  "superAdmin": "0x0101010101010101010101010101010101010101",
  "roles": {
    "admin": ["0x0202020202020202020202020202020202020202"],
    "oracle": ["0x0303030303030303030303030303030303030303"],
    "project_manager": ["0x0404040404040404040404040404040404040404"]
  }
}`

func TestLoadGenesisSpec(t *testing.T) {
	spec, err := LoadGenesisSpec(writeSpec(t, validDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := [20]byte{}
	for i := range want {
		want[i] = 0x01
	}
	if spec.SuperAdminAddress() != want {
		t.Fatalf("expected super admin %x, got %x", want, spec.SuperAdminAddress())
	}
}

func TestLoadGenesisSpecRejectsUnknownFields(t *testing.T) {
	doc := `{"superAdmin": "0x0101010101010101010101010101010101010101", "extra": true}`
	if _, err := LoadGenesisSpec(writeSpec(t, doc)); err == nil {
		t.Fatalf("expected unknown field rejection")
	}
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	cases := map[string]GenesisSpec{
		"missing super admin": {},
		"zero super admin":    {SuperAdmin: "0x0000000000000000000000000000000000000000"},
		"short address":       {SuperAdmin: "0x0101"},
		"unknown role": {
			SuperAdmin: "0x0101010101010101010101010101010101010101",
			Roles:      map[string][]string{"king": {"0x0202020202020202020202020202020202020202"}},
		},
		"super admin in grants": {
			SuperAdmin: "0x0101010101010101010101010101010101010101",
			Roles:      map[string][]string{"super_admin": {"0x0202020202020202020202020202020202020202"}},
		},
		"duplicate principal": {
			SuperAdmin: "0x0101010101010101010101010101010101010101",
			Roles: map[string][]string{
				"admin":  {"0x0202020202020202020202020202020202020202"},
				"oracle": {"0x0202020202020202020202020202020202020202"},
			},
		},
		"grant to super admin principal": {
			SuperAdmin: "0x0101010101010101010101010101010101010101",
			Roles:      map[string][]string{"admin": {"0x0101010101010101010101010101010101010101"}},
		},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			spec := spec
			if err := spec.Validate(); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}

func TestApplySeedsRegistry(t *testing.T) {
	spec, err := LoadGenesisSpec(writeSpec(t, validDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	registry := roles.NewRegistry(newMemoryStore())

	if err := Apply(spec, registry); err != nil {
		t.Fatalf("apply: %v", err)
	}

	holder, ok, err := registry.SuperAdmin()
	if err != nil {
		t.Fatalf("super admin: %v", err)
	}
	if !ok || holder != spec.SuperAdminAddress() {
		t.Fatalf("super admin not seeded")
	}

	expect := map[byte]roles.Role{
		0x02: roles.RoleAdmin,
		0x03: roles.RoleOracle,
		0x04: roles.RoleProjectManager,
	}
	for fill, role := range expect {
		var principal [20]byte
		for i := range principal {
			principal[i] = fill
		}
		has, err := registry.HasRole(principal, role)
		if err != nil {
			t.Fatalf("has role: %v", err)
		}
		if !has {
			t.Fatalf("expected %x to hold %s", principal, role)
		}
	}
}

func TestApplyTwiceFails(t *testing.T) {
	spec, err := LoadGenesisSpec(writeSpec(t, validDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	registry := roles.NewRegistry(newMemoryStore())

	if err := Apply(spec, registry); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := Apply(spec, registry); err == nil {
		t.Fatalf("expected second apply to fail")
	}
}
