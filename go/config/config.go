// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package config defines scenario files describing a sequence of unit
// deployments and calls, and provides helpers to load, validate and save
// them in YAML format.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/logger"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSender is the external account issuing all transactions of a
	// scenario not naming a sender.
	DefaultSender = "0x000000000000000000000000000000000000c0de"

	// DefaultFilePermissions is the file permission of saved scenarios.
	DefaultFilePermissions = 0o644
)

var (
	errScenarioIsNotSet = errors.New("scenario is not set")
	errNameRequired     = errors.New("deployment name must be provided")
	errTargetRequired   = errors.New("call target must be provided")
	errMethodRequired   = errors.New("call method must be provided")
)

// Scenario describes a sequence of deployments followed by a sequence of
// calls, all issued by the same sender.
type Scenario struct {
	// GasLimit is the gas limit of every transaction; 0 selects the default.
	GasLimit courier.Gas `yaml:"gas_limit,omitempty"`
	// MaxCallDepth overrides the maximum call depth of the host if positive.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`
	// LogLevel is the log level used while running the scenario.
	LogLevel string `yaml:"log_level,omitempty"`
	// Sender is the hex address of the external account issuing all
	// transactions.
	Sender string `yaml:"sender,omitempty"`
	// Deployments are executed in order before any call.
	Deployments []Deployment `yaml:"deployments"`
	// Calls are executed in order after all deployments.
	Calls []Call `yaml:"calls"`
}

// Deployment describes the construction of a unit instance.
type Deployment struct {
	// Name identifies the instance in address arguments and call targets.
	Name string `yaml:"name"`
	// Unit is the registry name of the deployed unit code.
	Unit string `yaml:"unit"`
	// Args are the constructor arguments. Addresses may be given as hex
	// strings or as names of deployments, including later ones.
	Args []any `yaml:"args,omitempty"`
}

// Call describes the invocation of an operation.
type Call struct {
	// Target is the name of a deployment or a hex address.
	Target string `yaml:"target"`
	// Method is the name of the invoked operation.
	Method string `yaml:"method"`
	// Args are the arguments of the operation.
	Args []any `yaml:"args,omitempty"`
	// Expect lists the expected results; if empty, results are not checked.
	Expect []any `yaml:"expect,omitempty"`
	// Fails indicates that the call is expected to fail.
	Fails bool `yaml:"fails,omitempty"`
	// Query indicates that the effects of the call are to be discarded.
	Query bool `yaml:"query,omitempty"`
}

// Load reads a scenario from the given path and validates it.
func Load(path string) (*Scenario, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(contents)
}

// Parse decodes and validates a scenario in YAML format.
func Parse(contents []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(contents, &scenario); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}
	if err := Validate(&scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Save writes the given scenario to the given path.
func Save(path string, scenario *Scenario) error {
	if scenario == nil {
		return errScenarioIsNotSet
	}
	if err := Validate(scenario); err != nil {
		return err
	}

	data, err := yaml.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	return nil
}

// Validate checks the given scenario for consistency and fills in defaults.
func Validate(scenario *Scenario) error {
	if scenario == nil {
		return errScenarioIsNotSet
	}
	if scenario.GasLimit < 0 {
		return fmt.Errorf("invalid gas limit: %d", scenario.GasLimit)
	}
	if scenario.MaxCallDepth < 0 {
		return fmt.Errorf("invalid max call depth: %d", scenario.MaxCallDepth)
	}
	if scenario.LogLevel != "" {
		if _, ok := logger.ParseLogLevel(scenario.LogLevel); !ok {
			return fmt.Errorf("invalid log level: %q", scenario.LogLevel)
		}
	}
	if scenario.Sender == "" {
		scenario.Sender = DefaultSender
	}
	if !common.IsHexAddress(scenario.Sender) {
		return fmt.Errorf("invalid sender address: %q", scenario.Sender)
	}

	names := map[string]bool{}
	for i, deployment := range scenario.Deployments {
		if deployment.Name == "" {
			return fmt.Errorf("deployment %d: %w", i, errNameRequired)
		}
		if names[deployment.Name] {
			return fmt.Errorf("deployment %d: duplicate name %q", i, deployment.Name)
		}
		if common.IsHexAddress(deployment.Name) {
			return fmt.Errorf("deployment %d: name %q is an address", i, deployment.Name)
		}
		names[deployment.Name] = true
		if courier.GetUnitByName(deployment.Unit) == nil {
			return fmt.Errorf("deployment %q: %w: %q", deployment.Name, courier.ErrUnknownCode, deployment.Unit)
		}
	}

	for i, call := range scenario.Calls {
		if call.Target == "" {
			return fmt.Errorf("call %d: %w", i, errTargetRequired)
		}
		if !names[call.Target] && !common.IsHexAddress(call.Target) {
			return fmt.Errorf("call %d: unknown target %q", i, call.Target)
		}
		if call.Method == "" {
			return fmt.Errorf("call %d: %w", i, errMethodRequired)
		}
		if call.Fails && len(call.Expect) > 0 {
			return fmt.Errorf("call %d: failing calls can not have expected results", i)
		}
	}
	return nil
}

// SenderAddress returns the address of the sender of the scenario.
func (s *Scenario) SenderAddress() courier.Address {
	if s.Sender == "" {
		return courier.Address(common.HexToAddress(DefaultSender))
	}
	return courier.Address(common.HexToAddress(s.Sender))
}
