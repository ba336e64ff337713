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
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Courier/go/config"
	"github.com/Fantom-foundation/Courier/go/logger"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Run scenario files and check their expectations",
	ArgsUsage: "<scenario.yaml>...",
	Flags: []cli.Flag{
		JobsFlag,
		LogLevelFlag,
		GasLimitFlag,
	},
}

func doRun(context *cli.Context) error {
	files := context.Args().Slice()
	if len(files) == 0 {
		return errors.New("no scenario files provided")
	}
	level, err := LogLevelFlag.Fetch(context)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	gasLimit := GasLimitFlag.Fetch(context)

	var outputMutex sync.Mutex
	group, ctx := errgroup.WithContext(context.Context)
	group.SetLimit(JobsFlag.Fetch(context))

	failed := make([]bool, len(files))
	for i, file := range files {
		group.Go(func() error {
			ctx := logger.WithKV(ctx, "file", file)
			scenario, err := config.Load(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			reports, err := runScenario(ctx, scenario, gasLimit)
			if err != nil && !errors.Is(err, errExpectation) {
				return fmt.Errorf("%s: %w", file, err)
			}

			var out strings.Builder
			fmt.Fprintf(&out, "%s:\n", file)
			for j, report := range reports {
				status := "ok"
				if report.err != nil {
					status = "failed"
				}
				fmt.Fprintf(&out, "  %2d %s.%s: %s, gas %s",
					j, report.call.Target, report.call.Method, status,
					unitconv.FormatPrefix(float64(report.gasUsed), unitconv.SI, 1),
				)
				if len(report.results) > 0 {
					fmt.Fprintf(&out, ", results %v", report.results)
				}
				fmt.Fprintln(&out)
			}
			if err != nil {
				failed[i] = true
				fmt.Fprintf(&out, "  FAILED: %v\n", err)
			} else {
				fmt.Fprintf(&out, "  PASSED\n")
			}

			outputMutex.Lock()
			defer outputMutex.Unlock()
			fmt.Fprint(context.App.Writer, out.String())
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	numFailed := 0
	for _, f := range failed {
		if f {
			numFailed++
		}
	}
	if numFailed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", numFailed, len(files))
	}
	return nil
}
