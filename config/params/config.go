// Package params defines the chain configuration constants the replay
// transition depends on, with mainnet defaults and yaml overrides.
package params

import (
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
)

// ChainConfig contains the constant configs a node needs to replay states
// for a given chain.
type ChainConfig struct {
	ConfigName string `yaml:"CONFIG_NAME" spec:"true"`

	// Time parameters.
	SlotsPerEpoch          types.Slot `yaml:"SLOTS_PER_EPOCH" spec:"true"`
	SlotsPerHistoricalRoot types.Slot `yaml:"SLOTS_PER_HISTORICAL_ROOT" spec:"true"`

	// Deposit contract parameters.
	DepositContractTreeDepth uint64 `yaml:"DEPOSIT_CONTRACT_TREE_DEPTH" spec:"true"`
	MaxDeposits              uint64 `yaml:"MAX_DEPOSITS" spec:"true"`

	// Gwei value parameters.
	MinDepositAmount          uint64 `yaml:"MIN_DEPOSIT_AMOUNT" spec:"true"`
	MaxEffectiveBalance       uint64 `yaml:"MAX_EFFECTIVE_BALANCE" spec:"true"`
	EffectiveBalanceIncrement uint64 `yaml:"EFFECTIVE_BALANCE_INCREMENT" spec:"true"`

	// Signature domains.
	DomainBeaconProposer []byte `yaml:"DOMAIN_BEACON_PROPOSER" spec:"true"`
	DomainDeposit        []byte `yaml:"DOMAIN_DEPOSIT" spec:"true"`

	// Fork parameters.
	GenesisForkVersion []byte `yaml:"GENESIS_FORK_VERSION" spec:"true"`

	// Constants not configurable via yaml.
	FarFutureEpoch     types.Epoch
	BLSPubkeyLength    int
	BLSSignatureLength int
	ZeroHash           [32]byte
}

var beaconConfig = MainnetConfig()

// BeaconConfig retrieves the process-wide chain config.
func BeaconConfig() *ChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig by replacing the config. The preferred pattern is to
// call this once on startup (or from a test setup) and then rely on
// BeaconConfig() everywhere else.
func OverrideBeaconConfig(c *ChainConfig) {
	beaconConfig = c
}

// Copy returns a copy of the config object.
func (c *ChainConfig) Copy() *ChainConfig {
	config := *c
	config.DomainBeaconProposer = append([]byte{}, c.DomainBeaconProposer...)
	config.DomainDeposit = append([]byte{}, c.DomainDeposit...)
	config.GenesisForkVersion = append([]byte{}, c.GenesisForkVersion...)
	return &config
}
