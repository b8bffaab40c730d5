// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/vevote/api/calls"
	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/builtin/escrow"
	"github.com/vechain/vevote/genesis"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

var ts *httptest.Server

func TestCalls(t *testing.T) {
	initCallsServer(t)
	defer ts.Close()

	for name, tt := range map[string]func(*testing.T){
		"testContracts":       testContracts,
		"testViewCall":        testViewCall,
		"testExecuteCall":     testExecuteCall,
		"testRevertedCall":    testRevertedCall,
		"testBadRequests":     testBadRequests,
		"testUnknownMethod":   testUnknownMethod,
		"testViewWithBadArgs": testViewWithBadArgs,
	} {
		t.Run(name, tt)
	}
}

func initCallsServer(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	gene := genesis.NewDevnet()
	_, err = gene.Build(st)
	require.NoError(t, err)

	rt := runtime.New(st, runtime.Options{Clock: gene.LaunchTime})
	router := mux.NewRouter()
	calls.New(rt).Mount(router, "/calls")
	ts = httptest.NewServer(router)
}

func testContracts(t *testing.T) {
	body, code := httpGet(t, ts.URL+"/calls/contracts")
	require.Equal(t, http.StatusOK, code)

	var addrs map[string]thor.Address
	require.NoError(t, json.Unmarshal(body, &addrs))
	assert.Equal(t, builtin.Escrow.Address, addrs["VotingEscrow"])
	assert.Equal(t, builtin.Election.Address, addrs["Election"])
	assert.Len(t, addrs, 6)
}

func testViewCall(t *testing.T) {
	body, code := httpPost(t, ts.URL+"/calls", calls.Request{
		To:     builtin.Token.Address,
		Method: "balanceOf",
		Args:   json.RawMessage(`{"owner":"` + genesis.DevAccounts()[1].Address.String() + `"}`),
	})
	require.Equal(t, http.StatusOK, code, string(body))

	var res struct {
		calls.Result
		Output json.RawMessage `json:"output"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Reverted)
	assert.Nil(t, res.Receipt)
	assert.Equal(t, "1000000000000000000000000000", string(res.Output))
}

func testExecuteCall(t *testing.T) {
	alice := genesis.DevAccounts()[1].Address
	body, code := httpPost(t, ts.URL+"/calls", calls.Request{
		Caller: alice,
		To:     builtin.Token.Address,
		Method: "approve",
		Args:   json.RawMessage(`{"spender":"` + builtin.Escrow.Address.String() + `","amount":"1000"}`),
	})
	require.Equal(t, http.StatusOK, code, string(body))

	var res calls.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Reverted)
	require.NotNil(t, res.Receipt)
	assert.Equal(t, alice, res.Receipt.Caller)
	assert.Equal(t, builtin.Token.Address, res.Receipt.To)
	assert.NotZero(t, res.Receipt.Number)
	assert.NotZero(t, res.Receipt.GasUsed)
	require.Len(t, res.Receipt.Events, 1)
	assert.Equal(t, builtin.Token.Address, res.Receipt.Events[0].Address)
}

func testRevertedCall(t *testing.T) {
	body, code := httpPost(t, ts.URL+"/calls", calls.Request{
		Caller: genesis.DevAccounts()[2].Address,
		To:     builtin.Escrow.Address,
		Method: "createLock",
		Args:   json.RawMessage(`{"amount":"0","duration":604800}`),
	})
	require.Equal(t, http.StatusOK, code, string(body))

	var res calls.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Reverted)
	assert.Contains(t, res.RevertReason, escrow.ErrZeroAmount.Error())
	assert.Nil(t, res.Output)
	require.NotNil(t, res.Receipt)
	assert.True(t, res.Receipt.Reverted)
	assert.Empty(t, res.Receipt.Events)
}

func testBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown field", `{"method":"balanceOf","foo":1}`},
		{"missing method", `{"to":"` + builtin.Token.Address.String() + `"}`},
		{"bad args", `{"to":"` + builtin.Escrow.Address.String() + `","method":"createLock","args":{"amount":"ten"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := httpPostRaw(t, ts.URL+"/calls", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func testUnknownMethod(t *testing.T) {
	_, code := httpPost(t, ts.URL+"/calls", calls.Request{
		To:     builtin.Escrow.Address,
		Method: "mint",
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func testViewWithBadArgs(t *testing.T) {
	_, code := httpPost(t, ts.URL+"/calls", calls.Request{
		To:     builtin.Escrow.Address,
		Method: "ownerOf",
		Args:   json.RawMessage(`{"id":"one"}`),
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return httpPostRaw(t, url, data)
}

func httpPostRaw(t *testing.T, url string, data []byte) ([]byte, int) {
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
