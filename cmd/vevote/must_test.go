// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/genesis"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

func newCliContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	genesisFlag.Apply(set)
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestSelectGenesis(t *testing.T) {
	gene, err := selectGenesis(newCliContext(t))
	require.NoError(t, err)
	assert.Equal(t, genesis.NewDevnet().ID(), gene.ID())
	assert.Equal(t, "devnet", gene.Name())

	_, err = selectGenesis(newCliContext(t, "--genesis", "/path/not/exist.yaml"))
	assert.Error(t, err)
}

func TestInitState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gene := genesis.NewDevnet()
	st, err := initState(gene, db)
	require.NoError(t, err)
	var treasury thor.Address
	require.NoError(t, runtime.New(st, runtime.Options{}).View(thor.Address{}, func(env *xenv.Environment) (err error) {
		treasury, err = builtin.Emission.Native(env).Treasury()
		return
	}))
	assert.Equal(t, genesis.DevAccounts()[0].Address, treasury)

	// reopening with the same genesis keeps the state
	_, err = initState(gene, db)
	require.NoError(t, err)

	other, err := genesis.NewCustomNet(&genesis.CustomGenesis{
		LaunchTime: 1700000000,
		Owner:      thor.BytesToAddress([]byte("owner")),
	})
	require.NoError(t, err)
	_, err = initState(other, db)
	assert.ErrorContains(t, err, "genesis mismatch")
}

func TestPullEmission(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gene := genesis.NewDevnet()
	st, err := initState(gene, db)
	require.NoError(t, err)

	now := gene.LaunchTime() + uint64((14 * 24 * time.Hour).Seconds())
	rt := runtime.New(st, runtime.Options{Clock: func() uint64 { return now }})

	amount, err := pullEmission(rt)
	require.NoError(t, err)
	assert.Equal(t, 1, amount.Sign())

	// nothing accrued since the last pull
	amount, err = pullEmission(rt)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Cmp(new(big.Int)))
	assert.Equal(t, uint32(2), rt.Number())
}

func TestPullEmissionNoTreasury(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gene, err := genesis.NewCustomNet(&genesis.CustomGenesis{
		LaunchTime: 1700000000,
		Owner:      thor.BytesToAddress([]byte("owner")),
	})
	require.NoError(t, err)
	st, err := initState(gene, db)
	require.NoError(t, err)
	rt := runtime.New(st, runtime.Options{})

	amount, err := pullEmission(rt)
	require.NoError(t, err)
	assert.Equal(t, 0, amount.Sign())
	assert.Equal(t, uint32(0), rt.Number())
}

func TestRequestBodyLimit(t *testing.T) {
	h := requestBodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 300*1024))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(0))
	assert.LessOrEqual(t, normalizeCacheSize(1<<30), 1<<30)
}

func TestMakeName(t *testing.T) {
	name := makeName("VeVote", "1.0.0-abc-dev")
	assert.True(t, strings.HasPrefix(name, "VeVote/v1.0.0-abc-dev/"))
	assert.Equal(t, 3, strings.Count(name, "/"))
}
