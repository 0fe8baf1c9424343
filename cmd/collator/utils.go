// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/remora-chain/remora/cmd/collator/sim"
	"github.com/remora-chain/remora/co"
	"github.com/remora-chain/remora/eventdb"
	"github.com/remora-chain/remora/genesis"
	"github.com/remora-chain/remora/kv"
	"github.com/remora-chain/remora/log"
	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/metrics"
	"github.com/remora-chain/remora/state"
)

// genesisIDKey stamps an instance dir with the network it was built
// for.
const genesisIDKey = "genesisID"

func fatal(args ...interface{}) {
	var w io.Writer
	outf, _ := os.Stdout.Stat()
	errf, _ := os.Stderr.Stat()
	if outf != nil && errf != nil && os.SameFile(outf, errf) {
		w = os.Stderr
	} else {
		w = io.MultiWriter(os.Stdout, os.Stderr)
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name)))
	output := io.Writer(os.Stdout)

	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(output, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(output, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	network := ctx.String(networkFlag.Name)
	switch network {
	case "dev":
		return genesis.NewDevnet(), nil
	case "test":
		return genesis.NewTestnet(), nil
	default:
		file, err := os.Open(network)
		if err != nil {
			return nil, errors.Wrap(err, "open genesis file")
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()

		var gen genesis.CustomGenesis
		if err := decoder.Decode(&gen); err != nil {
			return nil, errors.Wrap(err, "decode genesis file")
		}
		return genesis.NewCustomNet(&gen)
	}
}

func selectScenario(ctx *cli.Context) (*sim.Scenario, error) {
	scen := sim.DefaultScenario()
	if path := ctx.String(scenarioFlag.Name); path != "" {
		var err error
		if scen, err = sim.LoadScenario(path); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(seedFlag.Name) {
		scen.Seed = ctx.Int64(seedFlag.Name)
	}
	return scen, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(instanceDir string) (*lvldb.LevelDB, error) {
	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func openEventDB(instanceDir string) (*eventdb.EventDB, error) {
	path := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", path)
	}
	return db, nil
}

// initState gates the store and applies the genesis exactly once. A
// store stamped for another network is refused.
func initState(db *lvldb.LevelDB, gene *genesis.Genesis) (*state.State, error) {
	stater, err := state.NewStater(db)
	if err != nil {
		return nil, err
	}

	props := kv.Bucket(state.PropsBucketName).NewStore(db)
	stamp, err := props.Get([]byte(genesisIDKey))
	if err != nil {
		if !props.IsNotFound(err) {
			return nil, errors.Wrap(err, "read genesis stamp")
		}
		st := stater.NewState()
		if err := gene.Build(st); err != nil {
			return nil, errors.Wrap(err, "build genesis state")
		}
		if err := props.Put([]byte(genesisIDKey), gene.ID().Bytes()); err != nil {
			return nil, errors.Wrap(err, "write genesis stamp")
		}
		log.Info("genesis state built", "network", gene.Name(), "id", gene.ID())
		return stater.NewState(), nil
	}

	if !bytes.Equal(stamp, gene.ID().Bytes()) {
		return nil, errors.Errorf("data dir already initialized for another network (stamped %x)", stamp)
	}
	return stater.NewState(), nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	srv := &http.Server{
		Handler:           handlers.CompressHandler(router),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(gene *genesis.Genesis, scen *sim.Scenario, instanceDir, metricsURL, adminURL string) {
	fmt.Printf(`Starting %v
    Network     [ %v %v ]
    Scenario    [ %v (seed %v) ]
    Sessions    [ %v x %v blocks ]
    Operators   [ %v ]
    Data dir    [ %v ]
    Metrics     [ %v ]
    Admin       [ %v ]
`,
		fullVersion(),
		gene.Name(), gene.ID(),
		scen.Name, scen.Seed,
		scen.Sessions, scen.BlocksPerSession,
		scen.Operators,
		instanceDir,
		orOff(metricsURL),
		orOff(adminURL),
	)
}

func printSummary(sum *sim.Summary) {
	fmt.Printf(`Simulation done
    Sessions    [ %v ]
    Blocks      [ %v authored, %v missed, %v stalled ]
    Operators   [ %v registered, %v left, %v evicted ]
    Rewards     [ %v paid ]
`,
		sum.Sessions,
		sum.Authored, sum.Missed, sum.Stalled,
		sum.Registered, sum.Left, sum.Evicted,
		sum.Rewards,
	)
}

func orOff(url string) string {
	if url == "" {
		return "off"
	}
	return url
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if os.Getenv("XDG_DATA_HOME") != "" {
			return filepath.Join(os.Getenv("XDG_DATA_HOME"), "remora")
		}
		return filepath.Join(home, ".remora")
	}
	// As we cannot guess a stable location, return empty and handle later
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
