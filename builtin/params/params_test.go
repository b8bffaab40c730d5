// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

func newParams(t *testing.T) *Params {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(thor.BytesToAddress([]byte("par")), state.New(db))
}

func TestParamsGetSet(t *testing.T) {
	p := newParams(t)
	key := thor.BytesToBytes32([]byte("key"))

	v, err := p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, p.Set(key, big.NewInt(10)))
	v, err = p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), v)

	require.NoError(t, p.Set(key, big.NewInt(0)))
	v, err = p.Get(key)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}

func TestConfig(t *testing.T) {
	p := newParams(t)

	cfg := p.Config()
	assert.Equal(t, Config{
		PeriodLength:       thor.DefaultPeriodLength,
		MaxLockDuration:    thor.DefaultMaxLockDuration,
		MaxCheckpointSteps: thor.DefaultMaxCheckpointSteps,
		WithdrawToOwner:    false,
	}, cfg)

	require.NoError(t, p.Set(thor.KeyPeriodLength, big.NewInt(100)))
	require.NoError(t, p.Set(thor.KeyWithdrawToOwner, big.NewInt(1)))

	cfg = p.Config()
	assert.Equal(t, uint64(100), cfg.PeriodLength)
	assert.True(t, cfg.WithdrawToOwner)
	assert.Equal(t, uint64(200), cfg.PeriodStart(250))
}
