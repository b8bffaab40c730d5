// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"math/big"
	"time"

	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/runtime"
	"github.com/vechain/vevote/thor"
	"github.com/vechain/vevote/xenv"
)

var keeperLogger = log.WithContext("pkg", "keeper")

// pullEmission pulls the accrued emission on behalf of the treasury.
// It returns the pulled amount, zero when emission is not configured.
func pullEmission(rt *runtime.Runtime) (*big.Int, error) {
	var treasury thor.Address
	if err := rt.View(thor.Address{}, func(env *xenv.Environment) (err error) {
		treasury, err = builtin.Emission.Native(env).Treasury()
		return err
	}); err != nil {
		return nil, err
	}
	if treasury.IsZero() {
		return new(big.Int), nil
	}

	var amount *big.Int
	if _, err := rt.Execute(treasury, builtin.Emission.Address, func(env *xenv.Environment) (err error) {
		amount, err = builtin.Emission.Native(env).Pull()
		return err
	}); err != nil {
		return nil, err
	}
	return amount, nil
}

// runEmissionKeeper pulls emission every interval until ctx is done.
func runEmissionKeeper(ctx context.Context, rt *runtime.Runtime, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			amount, err := pullEmission(rt)
			if err != nil {
				keeperLogger.Warn("failed to pull emission", "err", err)
				continue
			}
			if amount.Sign() > 0 {
				keeperLogger.Info("emission pulled", "amount", amount)
			}
		}
	}
}

// runClockChecker checks the clock offset hourly until ctx is done.
func runClockChecker(ctx context.Context) error {
	checkClockOffset()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			checkClockOffset()
		}
	}
}
