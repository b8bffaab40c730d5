// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

const envPrefix = "vevote"

// envConfig holds the settings read from VEVOTE_* environment variables.
// They apply to flags not given on the command line.
type envConfig struct {
	Genesis       string  `envconfig:"GENESIS"`
	DataDir       string  `envconfig:"DATA_DIR"`
	Persist       bool    `envconfig:"PERSIST"`
	APIAddr       string  `envconfig:"API_ADDR"`
	APICors       string  `envconfig:"API_CORS"`
	Verbosity     *int    `envconfig:"VERBOSITY"`
	JSONLogs      bool    `envconfig:"JSON_LOGS"`
	EnableMetrics bool    `envconfig:"ENABLE_METRICS"`
	MetricsAddr   string  `envconfig:"METRICS_ADDR"`
	CallGasLimit  *uint64 `envconfig:"CALL_GAS_LIMIT"`
	PullInterval  *uint64 `envconfig:"PULL_INTERVAL"`
}

func loadEnvConfig() (*envConfig, error) {
	var cfg envConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "process environment")
	}
	return &cfg, nil
}

// flagValues maps flag names to the values set in the environment.
func (c *envConfig) flagValues() map[string]string {
	values := make(map[string]string)
	setString := func(name, v string) {
		if v != "" {
			values[name] = v
		}
	}
	setBool := func(name string, v bool) {
		if v {
			values[name] = "true"
		}
	}
	setString(genesisFlag.Name, c.Genesis)
	setString(dataDirFlag.Name, c.DataDir)
	setBool(persistFlag.Name, c.Persist)
	setString(apiAddrFlag.Name, c.APIAddr)
	setString(apiCorsFlag.Name, c.APICors)
	setBool(jsonLogsFlag.Name, c.JSONLogs)
	setBool(enableMetricsFlag.Name, c.EnableMetrics)
	setString(metricsAddrFlag.Name, c.MetricsAddr)
	if c.Verbosity != nil {
		values[verbosityFlag.Name] = strconv.Itoa(*c.Verbosity)
	}
	if c.CallGasLimit != nil {
		values[callGasLimitFlag.Name] = strconv.FormatUint(*c.CallGasLimit, 10)
	}
	if c.PullInterval != nil {
		values[pullIntervalFlag.Name] = strconv.FormatUint(*c.PullInterval, 10)
	}
	return values
}

// applyEnvConfig sets the flags not given on the command line from the environment.
func applyEnvConfig(ctx *cli.Context) error {
	cfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	for name, value := range cfg.flagValues() {
		if ctx.IsSet(name) {
			continue
		}
		if err := ctx.Set(name, value); err != nil {
			return errors.Wrapf(err, "set %s from environment", name)
		}
	}
	return nil
}
