// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	goruntime "runtime"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/vevote/genesis"
	"github.com/vechain/vevote/kv"
	"github.com/vechain/vevote/log"
	"github.com/vechain/vevote/logdb"
	"github.com/vechain/vevote/lvldb"
	"github.com/vechain/vevote/metrics"
	"github.com/vechain/vevote/state"
	"github.com/vechain/vevote/thor"
)

var (
	metaBucket = kv.Bucket("meta.")
	genesisKey = []byte("genesis")
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, lvl)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	gen, err := genesis.LoadCustomGenesis(path)
	if err != nil {
		return nil, err
	}
	customGen, err := genesis.NewCustomNet(gen)
	if err != nil {
		return nil, errors.WithMessage(err, "build genesis")
	}
	return customGen, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: 500,
		SyncCommits:            true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	sizeMB = max(sizeMB, 16)

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Root().Warn("failed to get total mem", "err", err)
		return sizeMB
	}
	// limit to 1/4 os physical ram
	if limitMB := int(mem.Total / 1024 / 1024 / 4); sizeMB > limitMB {
		log.Root().Warn("cache size(MB) limited", "limit", limitMB)
		return limitMB
	}
	return sizeMB
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	path := filepath.Join(dir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", path)
	}
	return db, nil
}

// initState builds the genesis state on an empty database, or checks the
// database was built from gene.
func initState(gene *genesis.Genesis, db kv.Store) (*state.State, error) {
	meta := metaBucket.NewStore(db)
	st := state.New(db)

	stored, err := meta.Get(genesisKey)
	if err != nil && !meta.IsNotFound(err) {
		return nil, err
	}
	if stored != nil {
		if !bytes.Equal(stored, gene.ID().Bytes()) {
			return nil, fmt.Errorf("genesis mismatch: database %v, want %v", thor.BytesToBytes32(stored), gene.ID())
		}
		return st, nil
	}

	events, err := gene.Build(st)
	if err != nil {
		return nil, errors.WithMessage(err, "build genesis state")
	}
	if err := meta.Put(genesisKey, gene.ID().Bytes()); err != nil {
		return nil, err
	}
	log.Root().Info("genesis state built", "id", gene.ID(), "events", len(events))
	return st, nil
}

func startAPIServer(addr string, handler http.Handler, timeout time.Duration) (*http.Server, net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return srv, listener, nil
}

func startMetricsServer(addr string) (*http.Server, net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}
	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: router, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return srv, listener, nil
}

// handleAPITimeout bounds the time of a request, websocket upgrades are exempt.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestBodyLimit limits the body size to 200kb.
func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 200*1024)
		h.ServeHTTP(w, r)
	})
}

// checkClockOffset warns when the local clock drifts away from ntp time,
// calls are timestamped with the local clock.
func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		log.Root().Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > 5*time.Second || resp.ClockOffset < -5*time.Second {
		log.Root().Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".org.vechain.vevote")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// makeName builds the node name as name/vVersion/os/goVersion.
func makeName(name, version string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", name, version, goruntime.GOOS, goruntime.Version())
}

func printStartupMessage(gene *genesis.Genesis, number uint32, dataDir, apiURL string) {
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Last call    [ #%v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		makeName("VeVote", fullVersion()),
		gene.ID(), gene.Name(),
		number,
		dataDir,
		apiURL)
}

func printDevAccounts() {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := tableHead
	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	fmt.Print(info + tableEnd + "\r\n")
}
