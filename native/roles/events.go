package roles

import (
	"encoding/hex"

	"pifpchain/core/types"
)

const (
	EventTypeRolesInitialized      = "roles.initialized"
	EventTypeRoleGranted           = "roles.granted"
	EventTypeRoleRevoked           = "roles.revoked"
	EventTypeSuperAdminTransferred = "roles.super_admin_transferred"
)

// NewInitializedEvent returns the canonical payload emitted when the registry
// is initialized with its first super admin.
func NewInitializedEvent(superAdmin [20]byte) *types.Event {
	return &types.Event{Type: EventTypeRolesInitialized, Attributes: map[string]string{
		"superAdmin": hex.EncodeToString(superAdmin[:]),
	}}
}

// NewGrantedEvent returns the canonical payload emitted when a role is
// granted or overwritten.
func NewGrantedEvent(caller, target [20]byte, role Role) *types.Event {
	return &types.Event{Type: EventTypeRoleGranted, Attributes: map[string]string{
		"caller": hex.EncodeToString(caller[:]),
		"target": hex.EncodeToString(target[:]),
		"role":   role.String(),
	}}
}

// NewRevokedEvent returns the canonical payload emitted when a role is
// cleared.
func NewRevokedEvent(caller, target [20]byte, role Role) *types.Event {
	return &types.Event{Type: EventTypeRoleRevoked, Attributes: map[string]string{
		"caller": hex.EncodeToString(caller[:]),
		"target": hex.EncodeToString(target[:]),
		"role":   role.String(),
	}}
}

// NewSuperAdminTransferredEvent returns the canonical payload emitted when
// the super admin seat moves.
func NewSuperAdminTransferredEvent(oldHolder, newHolder [20]byte) *types.Event {
	return &types.Event{Type: EventTypeSuperAdminTransferred, Attributes: map[string]string{
		"oldHolder": hex.EncodeToString(oldHolder[:]),
		"newHolder": hex.EncodeToString(newHolder[:]),
	}}
}
