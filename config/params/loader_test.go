package params_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stateforge/chainreplay/config/params"
	types "github.com/stateforge/chainreplay/consensus-types/primitives"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/testing/require"
)

func TestLoadChainConfigFile_OverridesOnTopOfMainnet(t *testing.T) {
	content := `CONFIG_NAME: testnet
SLOTS_PER_EPOCH: 8
SLOTS_PER_HISTORICAL_ROOT: 64
GENESIS_FORK_VERSION: 0x01020304
DOMAIN_DEPOSIT: 0x03000000
`
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(content), os.ModePerm))

	cfg, err := params.LoadChainConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.ConfigName)
	assert.Equal(t, types.Slot(8), cfg.SlotsPerEpoch)
	assert.Equal(t, types.Slot(64), cfg.SlotsPerHistoricalRoot)
	assert.DeepEqual(t, []byte{1, 2, 3, 4}, cfg.GenesisForkVersion)
	assert.DeepEqual(t, []byte{3, 0, 0, 0}, cfg.DomainDeposit)
	// Untouched values keep the mainnet defaults.
	assert.Equal(t, params.MainnetConfig().MaxEffectiveBalance, cfg.MaxEffectiveBalance)
	assert.Equal(t, params.MainnetConfig().DepositContractTreeDepth, cfg.DepositContractTreeDepth)
}

func TestLoadChainConfigFile_UnknownFieldRejected(t *testing.T) {
	content := `SLOTS_PER_EPOCH: 8
NOT_A_REAL_FIELD: 12
`
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(content), os.ModePerm))

	_, err := params.LoadChainConfigFile(file)
	require.ErrorContains(t, "failed to parse chain config", err)
}

func TestLoadChainConfigFile_MissingFile(t *testing.T) {
	_, err := params.LoadChainConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, "failed to read chain config file", err)
}

func TestOverrideBeaconConfig(t *testing.T) {
	prev := params.BeaconConfig()
	defer params.OverrideBeaconConfig(prev)

	params.OverrideBeaconConfig(params.MinimalSpecConfig())
	assert.Equal(t, types.Slot(8), params.BeaconConfig().SlotsPerEpoch)
}

func TestChainConfig_CopyDoesNotAlias(t *testing.T) {
	cfg := params.MainnetConfig().Copy()
	cfg.GenesisForkVersion[0] = 0xff
	assert.NotEqual(t, params.MainnetConfig().GenesisForkVersion[0], cfg.GenesisForkVersion[0])
}
