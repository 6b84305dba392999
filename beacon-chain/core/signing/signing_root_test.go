package signing_test

import (
	"testing"

	"github.com/stateforge/chainreplay/beacon-chain/core/signing"
	"github.com/stateforge/chainreplay/config/params"
	consensusblocks "github.com/stateforge/chainreplay/consensus-types/blocks"
	"github.com/stateforge/chainreplay/encoding/bytesutil"
	"github.com/stateforge/chainreplay/testing/assert"
	"github.com/stateforge/chainreplay/testing/require"
)

func TestComputeDomain_PrefixAndForkData(t *testing.T) {
	cfg := params.BeaconConfig()
	domain, err := signing.ComputeDomain(
		bytesutil.ToBytes4(cfg.DomainDeposit),
		cfg.GenesisForkVersion,
		cfg.ZeroHash[:],
	)
	require.NoError(t, err)
	require.Equal(t, 32, len(domain))
	assert.DeepEqual(t, cfg.DomainDeposit, domain[:4])

	forkRoot, err := signing.ComputeForkDataRoot(cfg.GenesisForkVersion, cfg.ZeroHash[:])
	require.NoError(t, err)
	assert.DeepEqual(t, forkRoot[:28], domain[4:])
}

func TestComputeDomain_DependsOnInputs(t *testing.T) {
	cfg := params.BeaconConfig()
	base, err := signing.ComputeDomain(bytesutil.ToBytes4(cfg.DomainDeposit), cfg.GenesisForkVersion, cfg.ZeroHash[:])
	require.NoError(t, err)
	otherType, err := signing.ComputeDomain(bytesutil.ToBytes4(cfg.DomainBeaconProposer), cfg.GenesisForkVersion, cfg.ZeroHash[:])
	require.NoError(t, err)
	otherFork, err := signing.ComputeDomain(bytesutil.ToBytes4(cfg.DomainDeposit), []byte{9, 9, 9, 9}, cfg.ZeroHash[:])
	require.NoError(t, err)

	assert.DeepNotEqual(t, base, otherType)
	assert.DeepNotEqual(t, base, otherFork)
}

func TestComputeSigningRoot_BindsObjectAndDomain(t *testing.T) {
	cfg := params.BeaconConfig()
	msg := &consensusblocks.DepositMessage{
		PublicKey:             make([]byte, 48),
		WithdrawalCredentials: make([]byte, 32),
		Amount:                32e9,
	}
	depositDomain, err := signing.ComputeDomain(bytesutil.ToBytes4(cfg.DomainDeposit), cfg.GenesisForkVersion, cfg.ZeroHash[:])
	require.NoError(t, err)
	proposerDomain, err := signing.ComputeDomain(bytesutil.ToBytes4(cfg.DomainBeaconProposer), cfg.GenesisForkVersion, cfg.ZeroHash[:])
	require.NoError(t, err)

	root, err := signing.ComputeSigningRoot(msg, depositDomain)
	require.NoError(t, err)
	same, err := signing.ComputeSigningRoot(msg, depositDomain)
	require.NoError(t, err)
	assert.Equal(t, root, same)

	crossDomain, err := signing.ComputeSigningRoot(msg, proposerDomain)
	require.NoError(t, err)
	assert.NotEqual(t, root, crossDomain, "domain separation failed")

	msg.Amount++
	changed, err := signing.ComputeSigningRoot(msg, depositDomain)
	require.NoError(t, err)
	assert.NotEqual(t, root, changed, "object changes must change the signing root")
}
