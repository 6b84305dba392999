package params

import (
	"math"

	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *ChainConfig {
	return &ChainConfig{
		ConfigName: "mainnet",

		SlotsPerEpoch:          32,
		SlotsPerHistoricalRoot: 8192,

		DepositContractTreeDepth: 32,
		MaxDeposits:              16,

		MinDepositAmount:          1 * 1e9,
		MaxEffectiveBalance:       32 * 1e9,
		EffectiveBalanceIncrement: 1 * 1e9,

		DomainBeaconProposer: []byte{0x00, 0x00, 0x00, 0x00},
		DomainDeposit:        []byte{0x03, 0x00, 0x00, 0x00},

		GenesisForkVersion: []byte{0x00, 0x00, 0x00, 0x00},

		FarFutureEpoch:     types.Epoch(math.MaxUint64),
		BLSPubkeyLength:    48,
		BLSSignatureLength: 96,
		ZeroHash:           [32]byte{},
	}
}

// MinimalSpecConfig retrieves the minimal config used in spec tests: a
// small epoch and history so that boundary conditions show up quickly.
func MinimalSpecConfig() *ChainConfig {
	minimal := MainnetConfig().Copy()
	minimal.ConfigName = "minimal"
	minimal.SlotsPerEpoch = 8
	minimal.SlotsPerHistoricalRoot = 64
	minimal.DepositContractTreeDepth = 32
	minimal.GenesisForkVersion = []byte{0x00, 0x00, 0x00, 0x01}
	return minimal
}
