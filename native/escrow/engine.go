package escrow

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"pifpchain/core/events"
	"pifpchain/core/types"
	"pifpchain/observability"
)

var (
	errNilAuthorizer  = errors.New("escrow engine: authorizer not configured")
	errNilGate        = errors.New("escrow engine: access gate not configured")
	errNilTransferrer = errors.New("escrow engine: transferrer not configured")
	errNilVault       = errors.New("escrow engine: vault address not configured")
)

// Authorizer proves that the calling principal cryptographically approved the
// current invocation. It runs before any policy or state check on every
// mutating entry point.
type Authorizer interface {
	RequireAuthorized(principal [20]byte) error
}

// TokenTransferrer moves asset value between principals or between a
// principal and the module's custodial vault. The engine invokes it exactly
// once per deposit and at most once per accepted asset per release.
type TokenTransferrer interface {
	Transfer(asset string, from, to [20]byte, amount *big.Int) error
}

// Verifier compares a submitted proof against the stored commitment. The
// default implementation is byte equality; it is designed to be replaced by a
// cryptographic verification scheme without changing any caller contract.
type Verifier interface {
	Matches(stored, submitted [32]byte) bool
}

// EqualityVerifier implements Verifier via byte equality.
type EqualityVerifier struct{}

// Matches implements the Verifier interface.
func (EqualityVerifier) Matches(stored, submitted [32]byte) bool {
	return stored == submitted
}

// accessGate abstracts the role policy checks the engine depends on.
type accessGate interface {
	RequireRegistrar(principal [20]byte) error
	RequireAdmin(principal [20]byte) error
	RequireOracle(principal [20]byte) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine wires the project lifecycle with the access gate, the external
// authorization and transfer capabilities, the proof verifier and the event
// emitter. Every mutating entry point checks authorization, then role policy,
// then the lifecycle transition, then mutates store and ledger state.
type Engine struct {
	store     *Store
	ledger    *Ledger
	gate      accessGate
	auth      Authorizer
	transfers TokenTransferrer
	verifier  Verifier
	emitter   events.Emitter
	vault     [20]byte
	nowFn     func() int64
}

// NewEngine creates an engine persisting through the provided storage
// backend, with a byte-equality verifier and a no-op emitter. The access
// gate, authorizer, transferrer and vault must be configured before use.
func NewEngine(store storage) *Engine {
	return &Engine{
		store:    NewStore(store),
		ledger:   NewLedger(store),
		verifier: EqualityVerifier{},
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
	}
}

// SetGate configures the role policy used for privileged operations.
func (e *Engine) SetGate(gate accessGate) { e.gate = gate }

// SetAuthorizer configures the call authorization primitive.
func (e *Engine) SetAuthorizer(auth Authorizer) { e.auth = auth }

// SetTransferrer configures the asset transfer capability.
func (e *Engine) SetTransferrer(t TokenTransferrer) { e.transfers = t }

// SetVault configures the module's custodial address.
func (e *Engine) SetVault(vault [20]byte) { e.vault = vault }

// SetVerifier configures the proof verifier. Passing nil resets the verifier
// to byte equality.
func (e *Engine) SetVerifier(v Verifier) {
	if v == nil {
		e.verifier = EqualityVerifier{}
		return
	}
	e.verifier = v
}

// SetEmitter configures the event emitter. Passing nil resets the emitter to
// a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deadline comparisons.
// Primarily intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) requireAuthorized(principal [20]byte) error {
	if e == nil || e.auth == nil {
		return errNilAuthorizer
	}
	return e.auth.RequireAuthorized(principal)
}

func (e *Engine) requireGate() (accessGate, error) {
	if e == nil || e.gate == nil {
		return nil, errNilGate
	}
	return e.gate, nil
}

func (e *Engine) requireTransferrer() (TokenTransferrer, error) {
	if e == nil || e.transfers == nil {
		return nil, errNilTransferrer
	}
	if e.vault == ([20]byte{}) {
		return nil, errNilVault
	}
	return e.transfers, nil
}

func (e *Engine) loadProject(id uint64) (*Project, error) {
	project, ok, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
	}
	return project, nil
}

// RegisterProject creates a new funding project in the Funding state with a
// freshly allocated id.
func (e *Engine) RegisterProject(caller [20]byte, assets []string, goal *big.Int, proofHash [32]byte, deadline int64) (*Project, error) {
	project, err := e.registerProject(caller, assets, goal, proofHash, deadline)
	observability.Escrow().Observe("register_project", err)
	return project, err
}

func (e *Engine) registerProject(caller [20]byte, assets []string, goal *big.Int, proofHash [32]byte, deadline int64) (*Project, error) {
	if err := e.requireAuthorized(caller); err != nil {
		return nil, err
	}
	gate, err := e.requireGate()
	if err != nil {
		return nil, err
	}
	if err := gate.RequireRegistrar(caller); err != nil {
		return nil, err
	}
	if goal == nil || goal.Sign() <= 0 {
		return nil, fmt.Errorf("%w: goal must be positive", ErrInvalidMilestones)
	}
	normalized, err := normalizeAssetList(assets)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if deadline <= now {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrInvalidMilestones)
	}
	id, err := e.store.NextID()
	if err != nil {
		return nil, err
	}
	project := &Project{
		ID:             id,
		Creator:        caller,
		AcceptedAssets: normalized,
		Goal:           new(big.Int).Set(goal),
		ProofHash:      proofHash,
		Deadline:       deadline,
		CreatedAt:      now,
		Status:         StatusFunding,
	}
	if err := e.store.Put(project); err != nil {
		return nil, err
	}
	e.emit(NewCreatedEvent(project))
	return project.Clone(), nil
}

func normalizeAssetList(assets []string) ([]string, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: accepted asset list must not be empty", ErrInvalidMilestones)
	}
	if len(assets) > MaxAcceptedAssets {
		return nil, fmt.Errorf("%w: accepted asset list exceeds %d entries", ErrInvalidMilestones, MaxAcceptedAssets)
	}
	normalized := make([]string, 0, len(assets))
	seen := make(map[string]struct{}, len(assets))
	for _, symbol := range assets {
		canonical, err := NormalizeAsset(symbol)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[canonical]; dup {
			return nil, fmt.Errorf("%w: %s", ErrTokenAlreadyAccepted, canonical)
		}
		seen[canonical] = struct{}{}
		normalized = append(normalized, canonical)
	}
	return normalized, nil
}

// Deposit pulls amount of asset from the donor into module custody and
// credits the project's escrow balance. No role is required to donate.
func (e *Engine) Deposit(donor [20]byte, projectID uint64, asset string, amount *big.Int) error {
	err := e.deposit(donor, projectID, asset, amount)
	observability.Escrow().Observe("deposit", err)
	return err
}

func (e *Engine) deposit(donor [20]byte, projectID uint64, asset string, amount *big.Int) error {
	if err := e.requireAuthorized(donor); err != nil {
		return err
	}
	transfers, err := e.requireTransferrer()
	if err != nil {
		return err
	}
	project, err := e.loadProject(projectID)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if project.Status.Terminal() {
		return fmt.Errorf("%w: cannot deposit while %s", ErrInvalidTransition, project.Status)
	}
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return err
	}
	if !project.AcceptsAsset(normalized) {
		return fmt.Errorf("%w: %s", ErrTokenNotAccepted, normalized)
	}
	if err := transfers.Transfer(normalized, donor, e.vault, amount); err != nil {
		return err
	}
	if _, err := e.ledger.Credit(projectID, normalized, amount); err != nil {
		return err
	}
	project.DonationCount++
	if err := e.store.Put(project); err != nil {
		return err
	}
	e.emit(NewFundedEvent(project, donor, normalized, amount))
	return nil
}

// WhitelistToken appends a new asset to the project's accepted list. The
// operation deliberately carries no status guard.
func (e *Engine) WhitelistToken(caller [20]byte, projectID uint64, asset string) error {
	err := e.whitelistToken(caller, projectID, asset)
	observability.Escrow().Observe("whitelist_token", err)
	return err
}

func (e *Engine) whitelistToken(caller [20]byte, projectID uint64, asset string) error {
	if err := e.requireAuthorized(caller); err != nil {
		return err
	}
	gate, err := e.requireGate()
	if err != nil {
		return err
	}
	if err := gate.RequireAdmin(caller); err != nil {
		return err
	}
	project, err := e.loadProject(projectID)
	if err != nil {
		return err
	}
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return err
	}
	if project.AcceptsAsset(normalized) {
		return fmt.Errorf("%w: %s", ErrTokenAlreadyAccepted, normalized)
	}
	if len(project.AcceptedAssets) >= MaxAcceptedAssets {
		return fmt.Errorf("%w: %d entries", ErrTooManyTokens, MaxAcceptedAssets)
	}
	project.AcceptedAssets = append(project.AcceptedAssets, normalized)
	if err := e.store.Put(project); err != nil {
		return err
	}
	e.emit(NewTokenWhitelistedEvent(project, caller, normalized))
	return nil
}

// RemoveToken removes an asset from the project's accepted list. The last
// remaining asset cannot be removed. The operation deliberately carries no
// status guard.
func (e *Engine) RemoveToken(caller [20]byte, projectID uint64, asset string) error {
	err := e.removeToken(caller, projectID, asset)
	observability.Escrow().Observe("remove_token", err)
	return err
}

func (e *Engine) removeToken(caller [20]byte, projectID uint64, asset string) error {
	if err := e.requireAuthorized(caller); err != nil {
		return err
	}
	gate, err := e.requireGate()
	if err != nil {
		return err
	}
	if err := gate.RequireAdmin(caller); err != nil {
		return err
	}
	project, err := e.loadProject(projectID)
	if err != nil {
		return err
	}
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return err
	}
	if !project.AcceptsAsset(normalized) {
		return fmt.Errorf("%w: %s", ErrTokenNotAccepted, normalized)
	}
	if len(project.AcceptedAssets) == 1 {
		return fmt.Errorf("%w: accepted asset list would become empty", ErrInvalidMilestones)
	}
	kept := make([]string, 0, len(project.AcceptedAssets)-1)
	for _, accepted := range project.AcceptedAssets {
		if accepted != normalized {
			kept = append(kept, accepted)
		}
	}
	project.AcceptedAssets = kept
	if err := e.store.Put(project); err != nil {
		return err
	}
	e.emit(NewTokenRemovedEvent(project, caller, normalized))
	return nil
}

// VerifyAndRelease compares the submitted proof against the stored
// commitment and, on match, drains every accepted asset's balance to the
// creator and completes the project. Zero balances are skipped without error.
func (e *Engine) VerifyAndRelease(caller [20]byte, projectID uint64, submitted [32]byte) error {
	err := e.verifyAndRelease(caller, projectID, submitted)
	observability.Escrow().Observe("verify_and_release", err)
	return err
}

func (e *Engine) verifyAndRelease(caller [20]byte, projectID uint64, submitted [32]byte) error {
	if err := e.requireAuthorized(caller); err != nil {
		return err
	}
	gate, err := e.requireGate()
	if err != nil {
		return err
	}
	if err := gate.RequireOracle(caller); err != nil {
		return err
	}
	transfers, err := e.requireTransferrer()
	if err != nil {
		return err
	}
	project, err := e.loadProject(projectID)
	if err != nil {
		return err
	}
	if project.Status.Terminal() {
		return fmt.Errorf("%w: project already %s", ErrInvalidTransition, project.Status)
	}
	if !e.verifier.Matches(project.ProofHash, submitted) {
		return ErrGoalMismatch
	}
	// Transfer before zeroing each entry so an aborted release never strands
	// escrowed funds: a retry re-reads the surviving balances.
	for _, asset := range project.AcceptedAssets {
		amount, err := e.ledger.Balance(projectID, asset)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			continue
		}
		if err := transfers.Transfer(asset, e.vault, project.Creator, amount); err != nil {
			return err
		}
		if _, err := e.ledger.Drain(projectID, asset); err != nil {
			return err
		}
	}
	project.Status = StatusCompleted
	if err := e.store.Put(project); err != nil {
		return err
	}
	e.emit(NewVerifiedEvent(project, caller))
	return nil
}

// ExpireProject marks a funding project past its deadline as expired. Any
// authorized principal may invoke the transition; no role is required.
func (e *Engine) ExpireProject(caller [20]byte, projectID uint64) error {
	err := e.expireProject(caller, projectID)
	observability.Escrow().Observe("expire_project", err)
	return err
}

func (e *Engine) expireProject(caller [20]byte, projectID uint64) error {
	if err := e.requireAuthorized(caller); err != nil {
		return err
	}
	project, err := e.loadProject(projectID)
	if err != nil {
		return err
	}
	if e.now() <= project.Deadline {
		return ErrDeadlineNotReached
	}
	if project.Status != StatusFunding {
		return fmt.Errorf("%w: only funding projects can expire", ErrInvalidTransition)
	}
	project.Status = StatusExpired
	if err := e.store.Put(project); err != nil {
		return err
	}
	e.emit(NewExpiredEvent(project))
	return nil
}

// GetProject retrieves a project by id.
func (e *Engine) GetProject(id uint64) (*Project, error) {
	return e.loadProject(id)
}

// GetBalances recomputes the balances snapshot over the project's current
// accepted list.
func (e *Engine) GetBalances(id uint64) (*ProjectBalances, error) {
	project, err := e.loadProject(id)
	if err != nil {
		return nil, err
	}
	return e.ledger.Snapshot(project)
}

// Balance returns the escrowed balance for one (project, asset) pair, zero
// when never credited.
func (e *Engine) Balance(id uint64, asset string) (*big.Int, error) {
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return nil, err
	}
	return e.ledger.Balance(id, normalized)
}
