// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/vevote/thor"
)

// DevAccount account for development.
type DevAccount struct {
	Address    thor.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for dev mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{thor.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// Devnet bribe tokens and candidates.
var (
	DevBribeTokens = []thor.Address{
		thor.BytesToAddress([]byte("BribeTokenA")),
		thor.BytesToAddress([]byte("BribeTokenB")),
	}
	DevCandidates = []thor.Bytes32{
		thor.Blake2b([]byte("candidate-1")),
		thor.Blake2b([]byte("candidate-2")),
		thor.Blake2b([]byte("candidate-3")),
	}
	DevRewardsSink = thor.BytesToAddress([]byte("RewardsSink"))
)

func devAmount(units int64) *Amount {
	v := new(big.Int).Mul(big.NewInt(units), big.NewInt(1e18))
	return (*Amount)(v)
}

// NewDevnet create genesis for dev mode. The first dev account owns the
// election and is the emission treasury.
func NewDevnet() *Genesis {
	launchTime := uint64(1526400000) // 'Wed May 16 2018 00:00:00 GMT+0800 (CST)'

	accs := DevAccounts()
	gen := &CustomGenesis{
		LaunchTime: launchTime,
		Owner:      accs[0].Address,
		Candidates: DevCandidates,
		Emission: &Emission{
			Treasury: accs[0].Address,
			Sink:     DevRewardsSink,
			Schedule: []Step{
				{Weeks: 52, WeeklyRate: devAmount(1_000_000)},
				{Weeks: 52, WeeklyRate: devAmount(500_000)},
			},
		},
	}
	for _, acc := range accs {
		gen.Accounts = append(gen.Accounts, Account{acc.Address, devAmount(1_000_000_000)})
	}
	for _, addr := range DevBribeTokens {
		bt := BribeToken{Address: addr}
		for _, acc := range accs {
			bt.Accounts = append(bt.Accounts, Account{acc.Address, devAmount(1_000_000)})
		}
		gen.BribeTokens = append(gen.BribeTokens, bt)
	}

	g, err := NewCustomNet(gen)
	if err != nil {
		panic(fmt.Errorf("build devnet genesis: %w", err))
	}
	g.name = "devnet"
	return g
}
