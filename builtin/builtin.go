// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/vevote/builtin/election"
	"github.com/vechain/vevote/builtin/emission"
	"github.com/vechain/vevote/builtin/escrow"
	"github.com/vechain/vevote/builtin/nft"
	"github.com/vechain/vevote/builtin/params"
	"github.com/vechain/vevote/builtin/token"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

// Builtin contracts binding.
var (
	Params   = &paramsContract{newContract("Params")}
	Token    = &tokenContract{newContract("Token")}
	Position = &positionContract{newContract("Position")}
	Escrow   = &escrowContract{newContract("VotingEscrow")}
	Election = &electionContract{newContract("Election")}
	Emission = &emissionContract{newContract("Emission")}
)

type (
	paramsContract   struct{ *contract }
	tokenContract    struct{ *contract }
	positionContract struct{ *contract }
	escrowContract   struct{ *contract }
	electionContract struct{ *contract }
	emissionContract struct{ *contract }
)

func (p *paramsContract) Native(state *state.State) *params.Params {
	return params.New(p.Address, state)
}

// Native returns the locked token acting for the caller of env.
func (t *tokenContract) Native(env *xenv.Environment) *token.Token {
	return token.New(t.Address, env)
}

// At returns the token deployed at addr, bribe tokens live at their own addresses.
func (t *tokenContract) At(addr thor.Address, env *xenv.Environment) *token.Token {
	return token.New(addr, env)
}

func (p *positionContract) Native(env *xenv.Environment) *nft.NFT {
	return nft.New(p.Address, env, Escrow.Address)
}

// Native returns the escrow. Token and position calls it makes are issued by the escrow.
func (e *escrowContract) Native(env *xenv.Environment) *escrow.Escrow {
	nested := env.Nested(e.Address)
	return escrow.New(
		e.Address,
		env,
		Token.Native(nested),
		Position.Native(nested),
		Params.Native(env.State()).Config(),
	)
}

func (e *electionContract) Native(env *xenv.Environment) *election.Election {
	nested := env.Nested(e.Address)
	tokens := func(addr thor.Address) election.Token {
		return Token.At(addr, nested)
	}
	return election.New(
		e.Address,
		env,
		Escrow.Native(env),
		tokens,
		Params.Native(env.State()).Config().PeriodLength,
	)
}

func (e *emissionContract) Native(env *xenv.Environment) *emission.Emission {
	return emission.New(e.Address, env, Token.Native(env.Nested(e.Address)))
}
