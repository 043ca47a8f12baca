package escrow

import (
	"errors"
	"fmt"
	"math/big"
)

// storage abstracts the subset of state manager functionality required by the
// project store and the escrow ledger.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	projectCounterKey = []byte("escrow/projects/counter")
	projectPrefix     = []byte("escrow/project/")
	balancePrefix     = []byte("escrow/balance/")
)

func projectKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%d", projectPrefix, id))
}

func balanceKey(id uint64, asset string) []byte {
	return []byte(fmt.Sprintf("%s%d/%s", balancePrefix, id, asset))
}

// storedProject mirrors Project with the unsigned field types the RLP codec
// requires.
type storedProject struct {
	ID             uint64
	Creator        [20]byte
	AcceptedAssets []string
	Goal           *big.Int
	ProofHash      [32]byte
	Deadline       uint64
	CreatedAt      uint64
	Status         uint8
	DonationCount  uint64
}

// Store allocates project identifiers and persists project records. It is the
// sole writer of project state.
type Store struct {
	store storage
}

// NewStore constructs a project store bound to the provided storage backend.
func NewStore(store storage) *Store {
	return &Store{store: store}
}

func (s *Store) ensure() error {
	if s == nil || s.store == nil {
		return errors.New("escrow: project store not configured")
	}
	return nil
}

// NextID allocates the next project identifier. Identifiers are issued
// strictly increasing starting at 1; the counter records the last issued id.
func (s *Store) NextID() (uint64, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	var last uint64
	if _, err := s.store.KVGet(projectCounterKey, &last); err != nil {
		return 0, err
	}
	id := last + 1
	if err := s.store.KVPut(projectCounterKey, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Put persists the project record, overwriting any previous version.
func (s *Store) Put(project *Project) error {
	if err := s.ensure(); err != nil {
		return err
	}
	sanitized, err := SanitizeProject(project)
	if err != nil {
		return err
	}
	if sanitized.ID == 0 {
		return errors.New("escrow: project id not allocated")
	}
	if sanitized.Deadline < 0 || sanitized.CreatedAt < 0 {
		return errors.New("escrow: negative timestamp")
	}
	stored := storedProject{
		ID:             sanitized.ID,
		Creator:        sanitized.Creator,
		AcceptedAssets: sanitized.AcceptedAssets,
		Goal:           sanitized.Goal,
		ProofHash:      sanitized.ProofHash,
		Deadline:       uint64(sanitized.Deadline),
		CreatedAt:      uint64(sanitized.CreatedAt),
		Status:         uint8(sanitized.Status),
		DonationCount:  sanitized.DonationCount,
	}
	return s.store.KVPut(projectKey(stored.ID), &stored)
}

// Get retrieves a project by id. The boolean reports whether the record
// exists.
func (s *Store) Get(id uint64) (*Project, bool, error) {
	if err := s.ensure(); err != nil {
		return nil, false, err
	}
	var stored storedProject
	ok, err := s.store.KVGet(projectKey(id), &stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	project := &Project{
		ID:             stored.ID,
		Creator:        stored.Creator,
		AcceptedAssets: stored.AcceptedAssets,
		Goal:           stored.Goal,
		ProofHash:      stored.ProofHash,
		Deadline:       int64(stored.Deadline),
		CreatedAt:      int64(stored.CreatedAt),
		Status:         ProjectStatus(stored.Status),
		DonationCount:  stored.DonationCount,
	}
	if !project.Status.Valid() {
		return nil, false, fmt.Errorf("escrow: corrupt status %d for project %d", stored.Status, id)
	}
	return project, true, nil
}

// Ledger tracks one escrow balance per (project, asset) pair. It is the sole
// writer of balance state. Entries are created on first credit and zeroed,
// never removed, on drain.
type Ledger struct {
	store storage
}

// NewLedger constructs a ledger bound to the provided storage backend.
func NewLedger(store storage) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) ensure() error {
	if l == nil || l.store == nil {
		return errors.New("escrow: ledger not configured")
	}
	return nil
}

// Credit adds amount to the stored balance and returns the new balance. The
// amount must already be validated positive by the caller.
func (l *Ledger) Credit(id uint64, asset string, amount *big.Int) (*big.Int, error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	current, err := l.Balance(id, asset)
	if err != nil {
		return nil, err
	}
	updated := new(big.Int).Add(current, amount)
	if err := l.store.KVPut(balanceKey(id, asset), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Balance returns the stored balance, or zero when the pair was never
// credited.
func (l *Ledger) Balance(id uint64, asset string) (*big.Int, error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}
	balance := new(big.Int)
	ok, err := l.store.KVGet(balanceKey(id, asset), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// Drain zeroes a positive balance and returns the prior value. A zero balance
// is returned as-is without a write. The caller must have already moved
// exactly the stored amount out of custody before draining.
func (l *Ledger) Drain(id uint64, asset string) (*big.Int, error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}
	current, err := l.Balance(id, asset)
	if err != nil {
		return nil, err
	}
	if current.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if err := l.store.KVPut(balanceKey(id, asset), big.NewInt(0)); err != nil {
		return nil, err
	}
	return current, nil
}

// Snapshot builds the balances view by reading every asset in the project's
// current accepted list, in list order.
func (l *Ledger) Snapshot(project *Project) (*ProjectBalances, error) {
	if err := l.ensure(); err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errors.New("escrow: nil project")
	}
	balances := make([]AssetBalance, 0, len(project.AcceptedAssets))
	for _, asset := range project.AcceptedAssets {
		balance, err := l.Balance(project.ID, asset)
		if err != nil {
			return nil, err
		}
		balances = append(balances, AssetBalance{Asset: asset, Balance: balance})
	}
	return &ProjectBalances{ProjectID: project.ID, Balances: balances}, nil
}
