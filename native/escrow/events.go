package escrow

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"pifpchain/core/types"
)

const (
	EventTypeProjectCreated   = "escrow.project.created"
	EventTypeProjectFunded    = "escrow.project.funded"
	EventTypeProjectVerified  = "escrow.project.verified"
	EventTypeProjectExpired   = "escrow.project.expired"
	EventTypeTokenWhitelisted = "escrow.project.token_whitelisted"
	EventTypeTokenRemoved     = "escrow.project.token_removed"
)

// NewCreatedEvent returns the canonical payload for a newly registered
// project.
func NewCreatedEvent(p *Project) *types.Event {
	attrs := baseAttributes(p)
	if p != nil {
		attrs["creator"] = hex.EncodeToString(p.Creator[:])
		if p.Goal != nil {
			attrs["goal"] = p.Goal.String()
		}
		attrs["assets"] = strings.Join(p.AcceptedAssets, ",")
		attrs["deadline"] = strconv.FormatInt(p.Deadline, 10)
	}
	return &types.Event{Type: EventTypeProjectCreated, Attributes: attrs}
}

// NewFundedEvent returns the canonical payload emitted when a deposit is
// accepted.
func NewFundedEvent(p *Project, donor [20]byte, asset string, amount *big.Int) *types.Event {
	attrs := baseAttributes(p)
	attrs["donor"] = hex.EncodeToString(donor[:])
	attrs["asset"] = asset
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	if p != nil {
		attrs["donationCount"] = strconv.FormatUint(p.DonationCount, 10)
	}
	return &types.Event{Type: EventTypeProjectFunded, Attributes: attrs}
}

// NewVerifiedEvent returns the canonical payload emitted when the oracle
// verifies the proof and escrowed funds are released.
func NewVerifiedEvent(p *Project, oracle [20]byte) *types.Event {
	attrs := baseAttributes(p)
	attrs["oracle"] = hex.EncodeToString(oracle[:])
	if p != nil {
		attrs["proofHash"] = hex.EncodeToString(p.ProofHash[:])
	}
	return &types.Event{Type: EventTypeProjectVerified, Attributes: attrs}
}

// NewExpiredEvent returns the canonical payload emitted when a project
// expires unfunded.
func NewExpiredEvent(p *Project) *types.Event {
	attrs := baseAttributes(p)
	if p != nil {
		attrs["deadline"] = strconv.FormatInt(p.Deadline, 10)
	}
	return &types.Event{Type: EventTypeProjectExpired, Attributes: attrs}
}

// NewTokenWhitelistedEvent returns the canonical payload emitted when an
// asset is appended to the accepted list.
func NewTokenWhitelistedEvent(p *Project, caller [20]byte, asset string) *types.Event {
	attrs := baseAttributes(p)
	attrs["caller"] = hex.EncodeToString(caller[:])
	attrs["asset"] = asset
	return &types.Event{Type: EventTypeTokenWhitelisted, Attributes: attrs}
}

// NewTokenRemovedEvent returns the canonical payload emitted when an asset is
// removed from the accepted list.
func NewTokenRemovedEvent(p *Project, caller [20]byte, asset string) *types.Event {
	attrs := baseAttributes(p)
	attrs["caller"] = hex.EncodeToString(caller[:])
	attrs["asset"] = asset
	return &types.Event{Type: EventTypeTokenRemoved, Attributes: attrs}
}

func baseAttributes(p *Project) map[string]string {
	attrs := make(map[string]string)
	if p != nil {
		attrs["projectId"] = strconv.FormatUint(p.ID, 10)
		attrs["status"] = p.Status.String()
	}
	return attrs
}
