// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// Int is a signed big integer with an rlp encoding, since rlp only knows unsigned ones.
// It is encoded as [negative, abs].
type Int struct {
	big.Int
}

func NewInt(x *big.Int) *Int {
	var i Int
	if x != nil {
		i.Set(x)
	}
	return &i
}

func (i *Int) Big() *big.Int {
	return new(big.Int).Set(&i.Int)
}

func (i *Int) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{i.Sign() < 0, new(big.Int).Abs(&i.Int)})
}

func (i *Int) DecodeRLP(s *rlp.Stream) error {
	var v struct {
		Negative bool
		Abs      *big.Int
	}
	if err := s.Decode(&v); err != nil {
		return err
	}
	i.Set(v.Abs)
	if v.Negative {
		i.Neg(&i.Int)
	}
	return nil
}
