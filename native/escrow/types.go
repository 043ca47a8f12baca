package escrow

import (
	"fmt"
	"math/big"
	"strings"
)

// ProjectStatus represents the lifecycle states of a funding project.
type ProjectStatus uint8

const (
	// StatusFunding accepts donations; the goal has not been verified.
	StatusFunding ProjectStatus = iota + 1
	// StatusActive is reserved for "goal reached, awaiting verification".
	// No transition currently enters it; deposits and verification accept it
	// so a future promotion needs no caller changes.
	StatusActive
	// StatusCompleted means the oracle verified the proof and escrowed funds
	// were released to the creator. Terminal.
	StatusCompleted
	// StatusExpired means the deadline passed without verification. Terminal.
	StatusExpired
)

// Valid reports whether the status value is within the supported range.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusFunding, StatusActive, StatusCompleted, StatusExpired:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status permits no further transitions.
func (s ProjectStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

func (s ProjectStatus) String() string {
	switch s {
	case StatusFunding:
		return "funding"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MaxAcceptedAssets caps the accepted-asset whitelist. The cap is a protocol
// invariant, not an implementation convenience.
const MaxAcceptedAssets = 10

// Project captures the metadata and runtime status of a single funding
// project held in escrow custody.
type Project struct {
	// ID is the unique auto-incremented project identifier.
	ID uint64
	// Creator registered the project and receives released funds. Immutable.
	Creator [20]byte
	// AcceptedAssets is the ordered whitelist of asset symbols the project
	// will custody. 1 to MaxAcceptedAssets distinct entries; mutated only by
	// the explicit whitelist operations.
	AcceptedAssets []string
	// Goal is the target funding amount, denominated in the first accepted
	// asset's units. Always positive.
	Goal *big.Int
	// ProofHash is the opaque commitment later compared against a submitted
	// proof to authorize release. Immutable.
	ProofHash [32]byte
	// Deadline is the unix timestamp by which the project must complete.
	Deadline int64
	// CreatedAt is the unix timestamp of registration.
	CreatedAt int64
	// Status is the current lifecycle state.
	Status ProjectStatus
	// DonationCount increments on every accepted deposit call. The original
	// field documentation described it as counting unique (token, donator)
	// pairs; the stored value has always counted calls, which is preserved
	// here.
	DonationCount uint64
}

// Clone returns a deep copy of the project so callers can safely mutate the
// copy without affecting the stored instance.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	clone := *p
	clone.AcceptedAssets = append([]string(nil), p.AcceptedAssets...)
	if p.Goal != nil {
		clone.Goal = new(big.Int).Set(p.Goal)
	} else {
		clone.Goal = big.NewInt(0)
	}
	return &clone
}

// AcceptsAsset reports whether the normalized symbol is in this project's
// accepted list.
func (p *Project) AcceptsAsset(asset string) bool {
	if p == nil {
		return false
	}
	for _, accepted := range p.AcceptedAssets {
		if accepted == asset {
			return true
		}
	}
	return false
}

// NormalizeAsset validates an asset symbol and returns its canonical
// uppercase form.
func NormalizeAsset(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", fmt.Errorf("escrow: asset symbol must not be empty")
	}
	if len(trimmed) > 32 {
		return "", fmt.Errorf("escrow: asset symbol too long: %s", trimmed)
	}
	for _, r := range trimmed {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' && r != ':' {
			return "", fmt.Errorf("escrow: invalid asset symbol: %s", symbol)
		}
	}
	return trimmed, nil
}

// SanitizeProject validates and normalises the supplied project, returning a
// cloned instance with canonical asset casing and a non-nil goal. The
// original value is not mutated.
func SanitizeProject(p *Project) (*Project, error) {
	if p == nil {
		return nil, fmt.Errorf("escrow: nil project")
	}
	clone := p.Clone()
	if len(clone.AcceptedAssets) == 0 || len(clone.AcceptedAssets) > MaxAcceptedAssets {
		return nil, fmt.Errorf("escrow: accepted asset list size %d out of range", len(clone.AcceptedAssets))
	}
	seen := make(map[string]struct{}, len(clone.AcceptedAssets))
	for i, symbol := range clone.AcceptedAssets {
		normalized, err := NormalizeAsset(symbol)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[normalized]; dup {
			return nil, fmt.Errorf("escrow: duplicate accepted asset %s", normalized)
		}
		seen[normalized] = struct{}{}
		clone.AcceptedAssets[i] = normalized
	}
	if clone.Goal.Sign() <= 0 {
		return nil, fmt.Errorf("escrow: goal must be positive")
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("escrow: invalid project status: %d", clone.Status)
	}
	return clone, nil
}

// AssetBalance is one (asset, balance) pair of a balances snapshot.
type AssetBalance struct {
	Asset   string
	Balance *big.Int
}

// ProjectBalances is a read-only snapshot over exactly the project's current
// accepted-asset list, in list order. It is recomputed on every query.
type ProjectBalances struct {
	ProjectID uint64
	Balances  []AssetBalance
}
