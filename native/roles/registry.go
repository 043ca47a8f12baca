package roles

import (
	"errors"
	"fmt"

	"pifpchain/core/events"
	"pifpchain/core/types"
	"pifpchain/observability"
)

var (
	// ErrNotAuthorized marks calls whose principal lacks the required
	// privilege for the requested operation.
	ErrNotAuthorized = errors.New("roles: not authorized")
	// ErrAlreadyInitialized is returned when Init runs against a registry
	// that already has a super admin.
	ErrAlreadyInitialized = errors.New("roles: already initialized")
	// ErrRoleNotFound marks operations that require an existing role record,
	// such as transferring a super admin seat that was never initialized.
	ErrRoleNotFound = errors.New("roles: role not found")
)

// storage abstracts the subset of state manager functionality required by the
// role registry.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

var (
	assignmentPrefix = []byte("roles/assignment/")
	superAdminKey    = []byte("roles/super_admin")
)

func assignmentKey(principal [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", assignmentPrefix, principal))
}

type roleEvent struct {
	evt *types.Event
}

func (e roleEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e roleEvent) Event() *types.Event { return e.evt }

// Registry is the sole writer of role assignments. Each principal maps to at
// most one role; the registry additionally records which principal currently
// holds the super admin seat so the single-holder invariant can be enforced.
type Registry struct {
	store   storage
	emitter events.Emitter
}

// NewRegistry constructs a registry bound to the provided storage backend.
func NewRegistry(store storage) *Registry {
	return &Registry{store: store, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used by the registry. Passing nil
// resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(event *types.Event) {
	if r == nil || r.emitter == nil || event == nil {
		return
	}
	r.emitter.Emit(roleEvent{evt: event})
}

func (r *Registry) ensureStore() error {
	if r == nil || r.store == nil {
		return errors.New("roles: registry not configured")
	}
	return nil
}

// Init assigns the super admin role to the supplied principal. The registry
// may only be initialized once.
func (r *Registry) Init(superAdmin [20]byte) error {
	err := r.init(superAdmin)
	observability.Roles().Observe("init", err)
	return err
}

func (r *Registry) init(superAdmin [20]byte) error {
	if err := r.ensureStore(); err != nil {
		return err
	}
	var holder [20]byte
	ok, err := r.store.KVGet(superAdminKey, &holder)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}
	if err := r.store.KVPut(assignmentKey(superAdmin), uint8(RoleSuperAdmin)); err != nil {
		return err
	}
	if err := r.store.KVPut(superAdminKey, superAdmin); err != nil {
		return err
	}
	r.emit(NewInitializedEvent(superAdmin))
	return nil
}

// Grant assigns role to target, overwriting any role target already holds.
// The caller must hold admin rank or better. The super admin role can never
// be granted this way, and the sitting super admin can never be demoted this
// way: either would break the exactly-one-super-admin invariant, so
// TransferSuperAdmin is the only path that touches the seat.
func (r *Registry) Grant(caller, target [20]byte, role Role) error {
	err := r.grant(caller, target, role)
	observability.Roles().Observe("grant", err)
	return err
}

func (r *Registry) grant(caller, target [20]byte, role Role) error {
	if err := r.ensureStore(); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("roles: invalid role %d", uint8(role))
	}
	if role == RoleSuperAdmin {
		return fmt.Errorf("%w: super admin must be transferred", ErrNotAuthorized)
	}
	if err := r.requireAdminRank(caller); err != nil {
		return err
	}
	current, held, err := r.RoleOf(target)
	if err != nil {
		return err
	}
	if held && current == RoleSuperAdmin {
		return fmt.Errorf("%w: super admin must be transferred", ErrNotAuthorized)
	}
	if err := r.store.KVPut(assignmentKey(target), uint8(role)); err != nil {
		return err
	}
	r.emit(NewGrantedEvent(caller, target, role))
	return nil
}

// Revoke clears target's role. The caller must hold admin rank or better.
// Revoking a principal without a role is a no-op; the super admin seat cannot
// be revoked, only transferred.
func (r *Registry) Revoke(caller, target [20]byte) error {
	err := r.revoke(caller, target)
	observability.Roles().Observe("revoke", err)
	return err
}

func (r *Registry) revoke(caller, target [20]byte) error {
	if err := r.ensureStore(); err != nil {
		return err
	}
	if err := r.requireAdminRank(caller); err != nil {
		return err
	}
	current, ok, err := r.RoleOf(target)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if current == RoleSuperAdmin {
		return fmt.Errorf("%w: super admin must be transferred", ErrNotAuthorized)
	}
	if err := r.store.KVDelete(assignmentKey(target)); err != nil {
		return err
	}
	r.emit(NewRevokedEvent(caller, target, current))
	return nil
}

// TransferSuperAdmin atomically moves the super admin seat from the caller to
// newHolder. The old holder is left with no role rather than being demoted.
func (r *Registry) TransferSuperAdmin(caller, newHolder [20]byte) error {
	err := r.transferSuperAdmin(caller, newHolder)
	observability.Roles().Observe("transfer_super_admin", err)
	return err
}

func (r *Registry) transferSuperAdmin(caller, newHolder [20]byte) error {
	if err := r.ensureStore(); err != nil {
		return err
	}
	var holder [20]byte
	ok, err := r.store.KVGet(superAdminKey, &holder)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: super admin not initialized", ErrRoleNotFound)
	}
	if holder != caller {
		return fmt.Errorf("%w: only the super admin may transfer the seat", ErrNotAuthorized)
	}
	if newHolder == caller {
		return nil
	}
	if err := r.store.KVPut(assignmentKey(newHolder), uint8(RoleSuperAdmin)); err != nil {
		return err
	}
	if err := r.store.KVPut(superAdminKey, newHolder); err != nil {
		return err
	}
	if err := r.store.KVDelete(assignmentKey(caller)); err != nil {
		return err
	}
	r.emit(NewSuperAdminTransferredEvent(caller, newHolder))
	return nil
}

// RoleOf returns the role currently held by principal, if any.
func (r *Registry) RoleOf(principal [20]byte) (Role, bool, error) {
	if err := r.ensureStore(); err != nil {
		return 0, false, err
	}
	var stored uint8
	ok, err := r.store.KVGet(assignmentKey(principal), &stored)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	role := Role(stored)
	if !role.Valid() {
		return 0, false, fmt.Errorf("roles: corrupt assignment %d", stored)
	}
	return role, true, nil
}

// HasRole reports whether principal currently holds exactly the supplied role.
func (r *Registry) HasRole(principal [20]byte, role Role) (bool, error) {
	current, ok, err := r.RoleOf(principal)
	if err != nil {
		return false, err
	}
	return ok && current == role, nil
}

// SuperAdmin returns the principal currently holding the super admin seat.
func (r *Registry) SuperAdmin() ([20]byte, bool, error) {
	if err := r.ensureStore(); err != nil {
		return [20]byte{}, false, err
	}
	var holder [20]byte
	ok, err := r.store.KVGet(superAdminKey, &holder)
	if err != nil {
		return [20]byte{}, false, err
	}
	return holder, ok, nil
}

func (r *Registry) requireAdminRank(caller [20]byte) error {
	role, ok, err := r.RoleOf(caller)
	if err != nil {
		return err
	}
	if !ok || role.Rank() < RoleAdmin.Rank() {
		return fmt.Errorf("%w: admin rank required", ErrNotAuthorized)
	}
	return nil
}
