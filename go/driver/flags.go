// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"runtime"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
)

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of scenario files run simultaneously",
		Value:   runtime.NumCPU(),
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context) int {
	jobs := context.Int(f.Name)
	if jobs < 1 {
		return 1
	}
	return jobs
}

type logLevelFlagType struct {
	cli.StringFlag
}

var LogLevelFlag = &logLevelFlagType{
	cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "minimum level of log messages (debug, info, warn, error)",
		Value:   "info",
	},
}

func (f *logLevelFlagType) Fetch(context *cli.Context) (zapcore.Level, error) {
	level, ok := logger.ParseLogLevel(context.String(f.Name))
	if !ok {
		return level, fmt.Errorf("invalid log level: %q", context.String(f.Name))
	}
	return level, nil
}

type gasLimitFlagType struct {
	cli.Int64Flag
}

var GasLimitFlag = &gasLimitFlagType{
	cli.Int64Flag{
		Name:  "gas-limit",
		Usage: "gas limit of every transaction, overriding the limit of the scenario if positive",
	},
}

func (f *gasLimitFlagType) Fetch(context *cli.Context) courier.Gas {
	return courier.Gas(context.Int64(f.Name))
}
