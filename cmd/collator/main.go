// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/remora-chain/remora/admin"
	"github.com/remora-chain/remora/cmd/collator/sim"
	"github.com/remora-chain/remora/eventdb"
	"github.com/remora-chain/remora/genesis"
	"github.com/remora-chain/remora/log"
	"github.com/remora-chain/remora/lvldb"
	"github.com/remora-chain/remora/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
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
		Name:      "Collator",
		Usage:     "Collator-selection simulator of the Remora network",
		Copyright: "2026 The Remora developers",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			scenarioFlag,
			seedFlag,
			persistFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: simAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func simAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)

	gene, err := selectGenesis(ctx)
	if err != nil {
		fatal(err)
	}
	scen, err := selectScenario(ctx)
	if err != nil {
		fatal(err)
	}

	var (
		mainDB      *lvldb.LevelDB
		archive     *eventdb.EventDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			fatal(err)
		}
		if mainDB, err = openMainDB(instanceDir); err != nil {
			fatal(err)
		}
		if archive, err = openEventDB(instanceDir); err != nil {
			fatal(err)
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			fatal(err)
		}
		if archive, err = eventdb.NewMem(); err != nil {
			fatal(err)
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); archive.Close() }()

	st, err := initState(mainDB, gene)
	if err != nil {
		fatal(err)
	}

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			fatal(err)
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	// the first dev account acts as the simulated governance origin
	govern := genesis.DevAccounts()[0].Address
	simulator, err := sim.New(st, gene, govern, archive, scen)
	if err != nil {
		fatal(err)
	}

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := admin.StartServer(
			ctx.String(adminAddrFlag.Name),
			logLevel,
			func() (*admin.Status, error) {
				snap := simulator.Snapshot()
				return &admin.Status{
					Network:           snap.Network,
					SessionIndex:      snap.SessionIndex,
					Authorities:       snap.Authorities,
					Candidates:        snap.Candidates,
					Invulnerables:     snap.Invulnerables,
					DesiredCandidates: snap.DesiredCandidates,
					CandidacyBond:     snap.CandidacyBond.String(),
					EvictionBaseline:  uint8(snap.EvictionBaseline),
					EvictionTolerance: uint8(snap.EvictionTolerance),
				}, nil
			})
		if err != nil {
			fatal(err)
		}
		adminURL = url
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(gene, scen, instanceDir, metricsURL, adminURL)

	sum, err := simulator.Run(handleExitSignal())
	if err != nil {
		return err
	}
	printSummary(sum)
	return nil
}
