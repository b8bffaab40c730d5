// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/vevote/api"
	"github.com/vechain/vevote/builtin"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/logdb"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/metrics"
	"github.com/vechain/vevote/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "vevote")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "VeVote",
		Usage:     "Vote escrow and bribe election service",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			callGasLimitFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			skipLogsFlag,
			cacheFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			pullIntervalFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "genesis",
				Usage: "print the genesis id and the builtin contract addresses",
				Flags: []cli.Flag{genesisFlag},
				Action: func(ctx *cli.Context) error {
					gene, err := selectGenesis(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("%v %v launch@%v\n", gene.ID(), gene.Name(), gene.LaunchTime())
					for name, addr := range builtin.Addresses() {
						fmt.Printf("%-14s %v\n", name, addr)
					}
					return nil
				},
			},
			{
				Name:  "dev-accounts",
				Usage: "print the pre-funded accounts of the devnet",
				Action: func(*cli.Context) error {
					printDevAccounts()
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	if err := applyEnvConfig(ctx); err != nil {
		return err
	}
	initLogger(ctx)
	defer func() { logger.Info("exited") }()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB  *lvldb.LevelDB
		logDB   *logdb.LogDB
		dataDir = "Memory"
	)
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, dataDir); err != nil {
			return err
		}
		if logDB, err = openLogDB(dataDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	st, err := initState(gene, mainDB)
	if err != nil {
		return err
	}
	head, err := runtime.LoadHead(st)
	if err != nil {
		return err
	}
	if logged, err := logDB.NewestNumber(); err != nil {
		return err
	} else if logged < head.Number && !ctx.Bool(skipLogsFlag.Name) {
		logger.Warn("log database is behind the state", "logged", logged, "head", head.Number)
	}

	opts := runtime.Options{
		GasLimit: ctx.Uint64(callGasLimitFlag.Name),
		Number:   head.Number,
		Time:     head.Time,
	}
	if !ctx.Bool(skipLogsFlag.Name) {
		opts.Writer = logDB
	}
	rt := runtime.New(st, opts)

	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
	}

	enableAPILogs := &atomic.Bool{}
	enableAPILogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler, closeSubs := api.New(rt, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger:      enableAPILogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        metricsEnabled,
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
	})
	apiSrv, apiListener, err := startAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}

	printStartupMessage(gene, head.Number, dataDir, "http://"+apiListener.Addr().String()+"/")
	if ctx.String(genesisFlag.Name) == "" {
		printDevAccounts()
	}

	exitCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	group, groupCtx := errgroup.WithContext(exitCtx)

	group.Go(func() error {
		if err := apiSrv.Serve(apiListener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if metricsEnabled {
		metricsSrv, metricsListener, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			cancel()
			apiSrv.Close()
			return err
		}
		logger.Info("metrics server started", "addr", metricsListener.Addr())
		group.Go(func() error {
			if err := metricsSrv.Serve(metricsListener); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			return metricsSrv.Close()
		})
	}
	if interval := ctx.Uint64(pullIntervalFlag.Name); interval > 0 {
		group.Go(func() error {
			return runEmissionKeeper(groupCtx, rt, time.Duration(interval)*time.Second)
		})
	}
	group.Go(func() error {
		return runClockChecker(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("stopping API server...")
		closeSubs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiSrv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
