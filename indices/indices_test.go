package indices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/profile"
)

func device(b byte) factor.Device {
	var h [factor.HashSize]byte
	h[0] = b
	d := factor.NewDevice(h, factor.DeviceHint{}, factor.BabylonOlympiaCompatible(), time.Unix(0, 0))
	return d.WithCommon(d.Common().WithFlag(factor.FlagMain)).(factor.Device)
}

func entity(address string, kind derivation.EntityKind, src factor.ID, path derivation.Path, flags ...profile.EntityFlag) profile.Entity {
	return profile.Entity{
		Kind:      kind,
		Address:   address,
		NetworkID: derivation.Mainnet,
		Flags:     flags,
		Security: profile.Unsecured{TransactionSigning: factor.Instance{
			FactorSourceID: src,
			Key:            factor.HDPublicKey{Path: path},
		}},
	}
}

func cap26(t *testing.T, kind derivation.EntityKind, index derivation.Index) derivation.Path {
	t.Helper()
	p, err := derivation.Cap26PathFor(kind, derivation.Mainnet, index, derivation.KeyKindTransactionSigning)
	require.NoError(t, err)
	return p
}

func legacy(t *testing.T, index derivation.Index) derivation.Path {
	t.Helper()
	p, err := derivation.NewBIP44LikePath(index, true)
	require.NoError(t, err)
	return p
}

func withAccounts(accounts ...profile.Entity) profile.Profile {
	return profile.Profile{
		FactorSources:    profile.FactorSources{device(1)},
		Networks:         []profile.Network{{ID: derivation.Mainnet, Accounts: accounts}},
		CurrentNetworkID: derivation.Mainnet,
	}
}

func request(src factor.ID, scheme derivation.Scheme) Request {
	return Request{
		FactorSourceID: src,
		EntityKind:     derivation.EntityKindAccount,
		NetworkID:      derivation.Mainnet,
		Scheme:         scheme,
	}
}

func TestNextIndexStartsAtZeroThenOne(t *testing.T) {
	src := device(1).ID()
	p := withAccounts()

	used, err := UsedByFactorSource(p, request(src, derivation.SchemeCAP26))
	require.NoError(t, err)
	assert.Empty(t, used.Indices)

	next, err := Next(used, NextAfterHighest)
	require.NoError(t, err)
	assert.Equal(t, derivation.Index(0), next)

	p = withAccounts(entity("acc0", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, next)))
	used, err = UsedByFactorSource(p, request(src, derivation.SchemeCAP26))
	require.NoError(t, err)

	next, err = Next(used, NextAfterHighest)
	require.NoError(t, err)
	assert.Equal(t, derivation.Index(1), next)
}

func TestUsedIncludesHiddenAndTombstoned(t *testing.T) {
	src := device(1).ID()
	p := withAccounts(
		entity("acc2", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 2), profile.FlagTombstonedByUser),
		entity("acc0", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 0)),
		entity("acc5", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 5), profile.FlagHiddenByUser),
	)

	used, err := UsedByFactorSource(p, request(src, derivation.SchemeCAP26))
	require.NoError(t, err)
	assert.Equal(t, []derivation.Index{0, 2, 5}, used.Indices)
	assert.Equal(t, src, used.FactorSourceID)

	next, err := Next(used, NextAfterHighest)
	require.NoError(t, err)
	assert.Equal(t, derivation.Index(6), next)

	next, err = Next(used, LowestFree)
	require.NoError(t, err)
	assert.Equal(t, derivation.Index(1), next)
}

func TestDuplicateIndexIsRejected(t *testing.T) {
	src := device(1).ID()
	p := withAccounts(
		entity("a", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 3)),
		entity("b", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 3)),
	)

	_, err := UsedByFactorSource(p, request(src, derivation.SchemeCAP26))
	assert.ErrorIs(t, err, ErrDuplicateIndex)
}

func TestMissingSecurityStateIsReported(t *testing.T) {
	src := device(1).ID()
	broken := entity("acc1", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 1))
	broken.Security = nil
	p := withAccounts(entity("acc0", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 0)), broken)

	_, err := UsedByFactorSource(p, request(src, derivation.SchemeCAP26))
	assert.ErrorIs(t, err, profile.ErrWrongSecurityState)
}

func TestSchemeAndSourceIsolation(t *testing.T) {
	src := device(1).ID()
	other := device(2).ID()
	p := withAccounts(
		entity("cap", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 0)),
		entity("olympia", derivation.EntityKindAccount, src, legacy(t, 0)),
		entity("olympia2", derivation.EntityKindAccount, src, legacy(t, 4)),
		entity("foreign", derivation.EntityKindAccount, other, cap26(t, derivation.EntityKindAccount, 9)),
	)

	used, err := UsedByFactorSource(p, request(src, derivation.SchemeCAP26))
	require.NoError(t, err)
	assert.Equal(t, []derivation.Index{0}, used.Indices)

	used, err = UsedByFactorSource(p, request(src, derivation.SchemeBIP44Olympia))
	require.NoError(t, err)
	assert.Equal(t, []derivation.Index{0, 4}, used.Indices)
}

func TestUnknownNetworkIsEmpty(t *testing.T) {
	src := device(1).ID()
	p := withAccounts(entity("acc0", derivation.EntityKindAccount, src, cap26(t, derivation.EntityKindAccount, 0)))

	req := request(src, derivation.SchemeCAP26)
	req.NetworkID = derivation.Stokenet
	used, err := UsedByFactorSource(p, req)
	require.NoError(t, err)
	assert.Empty(t, used.Indices)
	assert.Equal(t, derivation.Stokenet, used.NetworkID)
}

func TestNextOverflow(t *testing.T) {
	_, err := Next(Used{Indices: []derivation.Index{derivation.MaxIndex}}, NextAfterHighest)
	assert.ErrorIs(t, err, derivation.ErrIndexOutOfRange)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{NextAfterHighest, LowestFree} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("random")
	assert.Error(t, err)
}
