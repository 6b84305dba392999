package transition

import (
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

// ConsensusContext carries per-block values the block transition needs but
// that a caller may already hold, so that they are not recomputed. It is
// ephemeral: one context per block application.
type ConsensusContext struct {
	Slot          types.Slot
	proposerIndex *types.ValidatorIndex
}

// NewConsensusContext creates a context for a block at the given slot.
func NewConsensusContext(slot types.Slot) *ConsensusContext {
	return &ConsensusContext{Slot: slot}
}

// SetProposerIndex seeds the context with a known proposer index.
func (c *ConsensusContext) SetProposerIndex(idx types.ValidatorIndex) *ConsensusContext {
	c.proposerIndex = &idx
	return c
}

// Proposer returns the seeded proposer index, or falls back to the block's
// declared proposer and caches it.
func (c *ConsensusContext) Proposer(block *consensusblocks.BeaconBlock) types.ValidatorIndex {
	if c.proposerIndex != nil {
		return *c.proposerIndex
	}
	idx := block.ProposerIndex
	c.proposerIndex = &idx
	return idx
}
