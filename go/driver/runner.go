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
	"context"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Courier/go/chain"
	"github.com/Fantom-foundation/Courier/go/config"
	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/logger"
	"github.com/Fantom-foundation/Courier/go/processor/host"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// callReport describes the outcome of a single call of a scenario.
type callReport struct {
	call    config.Call
	results []any
	gasUsed courier.Gas
	err     error
}

// errExpectation marks scenario runs completing with calls not behaving as
// expected.
var errExpectation = errors.New("expectation not met")

// runScenario executes the given scenario on a fresh chain. Deployments are
// placed at addresses reserved before the first deployment, so constructor
// arguments may refer to any deployment of the scenario.
func runScenario(ctx context.Context, scenario *config.Scenario, gasLimit courier.Gas) ([]callReport, error) {
	log := logger.FromContext(ctx)
	if scenario.LogLevel != "" {
		level, _ := logger.ParseLogLevel(scenario.LogLevel)
		log = log.WithOptions(logger.WithLevel(level))
		ctx = logger.ToContext(ctx, log)
	}

	processor, err := host.NewProcessor(host.Config{
		MaxCallDepth: scenario.MaxCallDepth,
		Diagnostics:  logger.NewDiagnosticSink(log),
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	c := chain.New(processor, nil)
	if gasLimit <= 0 {
		gasLimit = scenario.GasLimit
	}
	if gasLimit > 0 {
		c.SetGasLimit(gasLimit)
	}

	sender := scenario.SenderAddress()
	reserved := c.ReserveAddresses(sender, len(scenario.Deployments))
	names := make(map[string]courier.Address, len(scenario.Deployments))
	for i, deployment := range scenario.Deployments {
		names[deployment.Name] = reserved[i]
	}
	resolve := func(name string) (courier.Address, bool) {
		address, found := names[name]
		return address, found
	}

	for i, deployment := range scenario.Deployments {
		unit := courier.GetUnitByName(deployment.Unit)
		if unit == nil {
			return nil, fmt.Errorf("deployment %q: %w: %s", deployment.Name, courier.ErrUnknownCode, deployment.Unit)
		}
		args, err := config.ConvertArgs(unit.ABI().Constructor.Inputs, deployment.Args, resolve)
		if err != nil {
			return nil, fmt.Errorf("deployment %q: %w", deployment.Name, err)
		}
		address, receipt, err := c.Deploy(ctx, sender, deployment.Unit, args...)
		if err != nil {
			return nil, fmt.Errorf("deployment %q failed: %w", deployment.Name, err)
		}
		if address != reserved[i] {
			return nil, fmt.Errorf("deployment %q placed at %v instead of %v", deployment.Name, address, reserved[i])
		}
		logger.DebugKV(ctx, "unit deployed",
			"name", deployment.Name,
			"unit", deployment.Unit,
			"address", address,
			"gasUsed", receipt.GasUsed,
		)
	}

	reports := make([]callReport, 0, len(scenario.Calls))
	var failures []error
	for i, call := range scenario.Calls {
		report, err := runCall(ctx, c, sender, call, resolve)
		if err != nil {
			return reports, fmt.Errorf("call %d (%s.%s): %w", i, call.Target, call.Method, err)
		}
		reports = append(reports, report)
		if err := checkExpectation(c, report, resolve); err != nil {
			failures = append(failures, fmt.Errorf("call %d (%s.%s): %w", i, call.Target, call.Method, err))
		}
	}
	if len(failures) > 0 {
		return reports, fmt.Errorf("%w: %w", errExpectation, errors.Join(failures...))
	}
	return reports, nil
}

func runCall(
	ctx context.Context,
	c *chain.Chain,
	sender courier.Address,
	call config.Call,
	resolve config.Resolver,
) (callReport, error) {
	target, err := config.ParseAddress(call.Target, resolve)
	if err != nil {
		return callReport{}, err
	}

	// Targets without a known unit can only be called without arguments.
	args := call.Args
	if method := methodOf(c, target, call.Method); method != nil {
		args, err = config.ConvertArgs(method.Inputs, call.Args, resolve)
		if err != nil {
			return callReport{}, err
		}
	} else if len(call.Args) > 0 {
		return callReport{}, fmt.Errorf("can not encode arguments for unknown operation %s at %v", call.Method, target)
	}

	invoke := c.Invoke
	if call.Query {
		invoke = c.Query
	}
	results, receipt, err := invoke(ctx, sender, target, call.Method, args...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return callReport{}, ctxErr
	}
	return callReport{
		call:    call,
		results: results,
		gasUsed: receipt.GasUsed,
		err:     err,
	}, nil
}

func checkExpectation(c *chain.Chain, report callReport, resolve config.Resolver) error {
	if report.call.Fails {
		if report.err == nil {
			return errors.New("call succeeded but was expected to fail")
		}
		return nil
	}
	if report.err != nil {
		return fmt.Errorf("unexpected failure: %w", report.err)
	}
	if len(report.call.Expect) == 0 {
		return nil
	}
	target, err := config.ParseAddress(report.call.Target, resolve)
	if err != nil {
		return err
	}
	method := methodOf(c, target, report.call.Method)
	if method == nil {
		return fmt.Errorf("unknown operation %s", report.call.Method)
	}
	return config.MatchResults(method.Outputs, report.call.Expect, report.results, resolve)
}

func methodOf(c *chain.Chain, target courier.Address, name string) *abi.Method {
	unitName, found := c.UnitName(target)
	if !found {
		return nil
	}
	unit := courier.GetUnitByName(unitName)
	if unit == nil {
		return nil
	}
	method, found := unit.ABI().Methods[name]
	if !found {
		return nil
	}
	return &method
}
