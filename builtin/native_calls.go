// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/vevote/thor"
)

var nativeMethods = make(map[thor.Address]map[string]*nativeMethod)

// FindMethod returns the method of the contract at to. Addresses not bound to a
// builtin contract are treated as tokens.
func FindMethod(to thor.Address, name string) (*nativeMethod, bool) {
	table, ok := nativeMethods[to]
	if !ok {
		table = nativeMethods[Token.Address]
	}
	m, ok := table[name]
	return m, ok
}

func (c *contract) impl(name string, view bool, run func(env *env) (any, error)) *nativeMethod {
	table, ok := nativeMethods[c.Address]
	if !ok {
		table = make(map[string]*nativeMethod)
		nativeMethods[c.Address] = table
	}
	m := &nativeMethod{name, view, run}
	table[name] = m
	return m
}

type idArgs struct {
	ID uint64
}

type timeArgs struct {
	T uint64
}

func init() {
	Params.impl("get", true, func(env *env) (any, error) {
		var key thor.Bytes32
		env.Args(&key)
		return Params.Native(env.State()).Get(key)
	})
	Params.impl("config", true, func(env *env) (any, error) {
		return Params.Native(env.State()).Config(), nil
	})

	Token.impl("balanceOf", true, func(env *env) (any, error) {
		var args struct{ Owner thor.Address }
		env.Args(&args)
		return Token.At(env.to, env.Environment).BalanceOf(args.Owner)
	})
	Token.impl("allowance", true, func(env *env) (any, error) {
		var args struct{ Owner, Spender thor.Address }
		env.Args(&args)
		return Token.At(env.to, env.Environment).Allowance(args.Owner, args.Spender)
	})
	Token.impl("totalSupply", true, func(env *env) (any, error) {
		return Token.At(env.to, env.Environment).TotalSupply()
	})
	Token.impl("transfer", false, func(env *env) (any, error) {
		var args struct {
			To     thor.Address
			Amount *math.HexOrDecimal256
		}
		env.Args(&args)
		return nil, Token.At(env.to, env.Environment).Transfer(args.To, toBig(args.Amount))
	})
	Token.impl("transferFrom", false, func(env *env) (any, error) {
		var args struct {
			From, To thor.Address
			Amount   *math.HexOrDecimal256
		}
		env.Args(&args)
		return nil, Token.At(env.to, env.Environment).TransferFrom(args.From, args.To, toBig(args.Amount))
	})
	Token.impl("approve", false, func(env *env) (any, error) {
		var args struct {
			Spender thor.Address
			Amount  *math.HexOrDecimal256
		}
		env.Args(&args)
		return nil, Token.At(env.to, env.Environment).Approve(args.Spender, toBig(args.Amount))
	})

	Position.impl("ownerOf", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Position.Native(env.Environment).OwnerOf(args.ID)
	})
	Position.impl("balanceOf", true, func(env *env) (any, error) {
		var args struct{ Owner thor.Address }
		env.Args(&args)
		return Position.Native(env.Environment).BalanceOf(args.Owner)
	})
	Position.impl("getApproved", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Position.Native(env.Environment).GetApproved(args.ID)
	})
	Position.impl("isApprovedForAll", true, func(env *env) (any, error) {
		var args struct{ Owner, Operator thor.Address }
		env.Args(&args)
		return Position.Native(env.Environment).IsApprovedForAll(args.Owner, args.Operator)
	})
	Position.impl("approve", false, func(env *env) (any, error) {
		var args struct {
			To thor.Address
			ID uint64
		}
		env.Args(&args)
		return nil, Position.Native(env.Environment).Approve(args.To, args.ID)
	})
	Position.impl("setApprovalForAll", false, func(env *env) (any, error) {
		var args struct {
			Operator thor.Address
			Approved bool
		}
		env.Args(&args)
		return nil, Position.Native(env.Environment).SetApprovalForAll(args.Operator, args.Approved)
	})
	Position.impl("transferFrom", false, func(env *env) (any, error) {
		var args struct {
			From, To thor.Address
			ID       uint64
		}
		env.Args(&args)
		return nil, Position.Native(env.Environment).TransferFrom(args.From, args.To, args.ID)
	})

	Escrow.impl("createLock", false, func(env *env) (any, error) {
		var args struct {
			Amount   *math.HexOrDecimal256
			Duration uint64
		}
		env.Args(&args)
		return Escrow.Native(env.Environment).CreateLock(toBig(args.Amount), args.Duration)
	})
	Escrow.impl("createLockFor", false, func(env *env) (any, error) {
		var args struct {
			Amount    *math.HexOrDecimal256
			Duration  uint64
			Recipient thor.Address
		}
		env.Args(&args)
		return Escrow.Native(env.Environment).CreateLockFor(toBig(args.Amount), args.Duration, args.Recipient)
	})
	Escrow.impl("depositFor", false, func(env *env) (any, error) {
		var args struct {
			ID     uint64
			Amount *math.HexOrDecimal256
		}
		env.Args(&args)
		return nil, Escrow.Native(env.Environment).DepositFor(args.ID, toBig(args.Amount))
	})
	Escrow.impl("increaseUnlockTime", false, func(env *env) (any, error) {
		var args struct {
			ID     uint64
			NewEnd uint64
		}
		env.Args(&args)
		return nil, Escrow.Native(env.Environment).IncreaseUnlockTime(args.ID, args.NewEnd)
	})
	Escrow.impl("withdraw", false, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return nil, Escrow.Native(env.Environment).Withdraw(args.ID)
	})
	Escrow.impl("lockIndefinite", false, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return nil, Escrow.Native(env.Environment).LockIndefinite(args.ID)
	})
	Escrow.impl("unlockIndefinite", false, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return nil, Escrow.Native(env.Environment).UnlockIndefinite(args.ID)
	})
	Escrow.impl("merge", false, func(env *env) (any, error) {
		var args struct{ From, To uint64 }
		env.Args(&args)
		return nil, Escrow.Native(env.Environment).Merge(args.From, args.To)
	})
	Escrow.impl("checkpoint", false, func(env *env) (any, error) {
		return nil, Escrow.Native(env.Environment).Checkpoint()
	})
	Escrow.impl("locked", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Escrow.Native(env.Environment).Locked(args.ID)
	})
	Escrow.impl("supply", true, func(env *env) (any, error) {
		return Escrow.Native(env.Environment).Supply()
	})
	Escrow.impl("epoch", true, func(env *env) (any, error) {
		return Escrow.Native(env.Environment).Epoch()
	})
	Escrow.impl("pointHistory", true, func(env *env) (any, error) {
		var args struct{ Epoch uint64 }
		env.Args(&args)
		return Escrow.Native(env.Environment).PointHistory(args.Epoch)
	})
	Escrow.impl("userPointEpoch", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Escrow.Native(env.Environment).UserPointEpoch(args.ID)
	})
	Escrow.impl("userPointHistory", true, func(env *env) (any, error) {
		var args struct{ ID, Epoch uint64 }
		env.Args(&args)
		return Escrow.Native(env.Environment).UserPointHistory(args.ID, args.Epoch)
	})
	Escrow.impl("slopeChange", true, func(env *env) (any, error) {
		var args timeArgs
		env.Args(&args)
		return Escrow.Native(env.Environment).SlopeChange(args.T)
	})
	Escrow.impl("indefiniteLockBalance", true, func(env *env) (any, error) {
		return Escrow.Native(env.Environment).IndefiniteLockBalance()
	})
	Escrow.impl("balanceOfAt", true, func(env *env) (any, error) {
		var args struct{ ID, T uint64 }
		env.Args(&args)
		return Escrow.Native(env.Environment).BalanceOfAt(args.ID, args.T)
	})
	Escrow.impl("balanceOf", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Escrow.Native(env.Environment).BalanceOf(args.ID)
	})
	Escrow.impl("totalSupplyAt", true, func(env *env) (any, error) {
		var args timeArgs
		env.Args(&args)
		return Escrow.Native(env.Environment).TotalSupplyAt(args.T)
	})
	Escrow.impl("totalSupply", true, func(env *env) (any, error) {
		return Escrow.Native(env.Environment).TotalSupply()
	})
	Escrow.impl("isAuthorized", true, func(env *env) (any, error) {
		var args struct {
			Actor thor.Address
			ID    uint64
		}
		env.Args(&args)
		return Escrow.Native(env.Environment).IsAuthorized(args.Actor, args.ID)
	})
	Escrow.impl("ownerOf", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Escrow.Native(env.Environment).OwnerOf(args.ID)
	})

	Election.impl("vote", false, func(env *env) (any, error) {
		var args struct {
			ID         uint64
			Candidates []thor.Bytes32
			Weights    []*math.HexOrDecimal256
		}
		env.Args(&args)
		return nil, Election.Native(env.Environment).Vote(args.ID, args.Candidates, toBigs(args.Weights))
	})
	Election.impl("addBribe", false, func(env *env) (any, error) {
		var args struct {
			Token     thor.Address
			Amount    *math.HexOrDecimal256
			Candidate thor.Bytes32
		}
		env.Args(&args)
		return nil, Election.Native(env.Environment).AddBribe(args.Token, toBig(args.Amount), args.Candidate)
	})
	Election.impl("claimBribes", false, func(env *env) (any, error) {
		var args struct {
			ID          uint64
			Tokens      []thor.Address
			Candidates  []thor.Bytes32
			From, Until uint64
		}
		env.Args(&args)
		return Election.Native(env.Environment).ClaimBribes(args.ID, args.Tokens, args.Candidates, args.From, args.Until)
	})
	Election.impl("enableCandidate", false, func(env *env) (any, error) {
		var args struct{ Candidate thor.Bytes32 }
		env.Args(&args)
		return nil, Election.Native(env.Environment).EnableCandidate(args.Candidate)
	})
	Election.impl("disableCandidate", false, func(env *env) (any, error) {
		var args struct{ Candidate thor.Bytes32 }
		env.Args(&args)
		return nil, Election.Native(env.Environment).DisableCandidate(args.Candidate)
	})
	Election.impl("enableBribeToken", false, func(env *env) (any, error) {
		var args struct{ Token thor.Address }
		env.Args(&args)
		return nil, Election.Native(env.Environment).EnableBribeToken(args.Token)
	})
	Election.impl("disableBribeToken", false, func(env *env) (any, error) {
		var args struct{ Token thor.Address }
		env.Args(&args)
		return nil, Election.Native(env.Environment).DisableBribeToken(args.Token)
	})
	Election.impl("transferOwnership", false, func(env *env) (any, error) {
		var args struct{ NewOwner thor.Address }
		env.Args(&args)
		return nil, Election.Native(env.Environment).TransferOwnership(args.NewOwner)
	})
	Election.impl("owner", true, func(env *env) (any, error) {
		return Election.Native(env.Environment).Owner()
	})
	Election.impl("initialPeriodStart", true, func(env *env) (any, error) {
		return Election.Native(env.Environment).InitialPeriodStart()
	})
	Election.impl("periodStart", true, func(env *env) (any, error) {
		var args timeArgs
		env.Args(&args)
		return Election.Native(env.Environment).PeriodStart(args.T), nil
	})
	Election.impl("isCandidate", true, func(env *env) (any, error) {
		var args struct{ Candidate thor.Bytes32 }
		env.Args(&args)
		return Election.Native(env.Environment).IsCandidate(args.Candidate)
	})
	Election.impl("isBribeToken", true, func(env *env) (any, error) {
		var args struct{ Token thor.Address }
		env.Args(&args)
		return Election.Native(env.Environment).IsBribeToken(args.Token)
	})
	Election.impl("lastVoteTime", true, func(env *env) (any, error) {
		var args idArgs
		env.Args(&args)
		return Election.Native(env.Environment).LastVoteTime(args.ID)
	})
	Election.impl("votes", true, func(env *env) (any, error) {
		var args struct {
			Candidate thor.Bytes32
			T         uint64
		}
		env.Args(&args)
		return Election.Native(env.Environment).Votes(args.Candidate, args.T)
	})
	Election.impl("positionVotes", true, func(env *env) (any, error) {
		var args struct {
			ID        uint64
			Candidate thor.Bytes32
			T         uint64
		}
		env.Args(&args)
		return Election.Native(env.Environment).PositionVotes(args.ID, args.Candidate, args.T)
	})
	Election.impl("bribes", true, func(env *env) (any, error) {
		var args struct {
			Token     thor.Address
			Candidate thor.Bytes32
			T         uint64
		}
		env.Args(&args)
		return Election.Native(env.Environment).Bribes(args.Token, args.Candidate, args.T)
	})
	Election.impl("isClaimed", true, func(env *env) (any, error) {
		var args struct {
			ID        uint64
			Token     thor.Address
			Candidate thor.Bytes32
			T         uint64
		}
		env.Args(&args)
		return Election.Native(env.Environment).IsClaimed(args.ID, args.Token, args.Candidate, args.T)
	})
	Election.impl("claimable", true, func(env *env) (any, error) {
		var args struct {
			ID        uint64
			Token     thor.Address
			Candidate thor.Bytes32
			T         uint64
		}
		env.Args(&args)
		return Election.Native(env.Environment).Claimable(args.ID, args.Token, args.Candidate, args.T)
	})

	Emission.impl("pull", false, func(env *env) (any, error) {
		return Emission.Native(env.Environment).Pull()
	})
	Emission.impl("accrued", true, func(env *env) (any, error) {
		var args timeArgs
		env.Args(&args)
		return Emission.Native(env.Environment).Accrued(args.T)
	})
	Emission.impl("pending", true, func(env *env) (any, error) {
		return Emission.Native(env.Environment).Pending()
	})
	Emission.impl("pulled", true, func(env *env) (any, error) {
		return Emission.Native(env.Environment).Pulled()
	})
	Emission.impl("treasury", true, func(env *env) (any, error) {
		return Emission.Native(env.Environment).Treasury()
	})
	Emission.impl("sink", true, func(env *env) (any, error) {
		return Emission.Native(env.Environment).Sink()
	})
	Emission.impl("launchTime", true, func(env *env) (any, error) {
		return Emission.Native(env.Environment).LaunchTime()
	})
	Emission.impl("schedule", true, func(env *env) (any, error) {
		return Emission.Native(env.Environment).Schedule()
	})
}
