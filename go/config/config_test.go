// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/stretchr/testify/require"

	_ "github.com/Fantom-foundation/Courier/go/units/source"
)

const sampleScenario = `
gas_limit: 1000000
log_level: debug
deployments:
  - name: source
    unit: source
    args: [false, destination]
  - name: destination
    unit: destination
    args: [false]
calls:
  - target: source
    method: destinationFlip
  - target: destination
    method: get
    expect: [true]
    query: true
`

func TestParse_SampleScenario(t *testing.T) {
	t.Parallel()

	scenario, err := Parse([]byte(sampleScenario))
	require.NoError(t, err)
	require.Equal(t, courier.Gas(1_000_000), scenario.GasLimit)
	require.Equal(t, "debug", scenario.LogLevel)
	require.Equal(t, DefaultSender, scenario.Sender)
	require.Len(t, scenario.Deployments, 2)
	require.Equal(t, []any{false, "destination"}, scenario.Deployments[0].Args)
	require.Len(t, scenario.Calls, 2)
	require.Equal(t, []any{true}, scenario.Calls[1].Expect)
	require.True(t, scenario.Calls[1].Query)
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("deployments: [name: ]]"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Scenario {
		return &Scenario{
			Deployments: []Deployment{{Name: "d", Unit: "destination", Args: []any{true}}},
			Calls:       []Call{{Target: "d", Method: "flip"}},
		}
	}

	tests := map[string]struct {
		modify func(*Scenario)
		valid  bool
	}{
		"valid":                {func(*Scenario) {}, true},
		"hex target":           {func(s *Scenario) { s.Calls[0].Target = "0x00000000000000000000000000000000000000ff" }, true},
		"negative gas limit":   {func(s *Scenario) { s.GasLimit = -1 }, false},
		"negative call depth":  {func(s *Scenario) { s.MaxCallDepth = -1 }, false},
		"unknown log level":    {func(s *Scenario) { s.LogLevel = "loud" }, false},
		"invalid sender":       {func(s *Scenario) { s.Sender = "alice" }, false},
		"missing name":         {func(s *Scenario) { s.Deployments[0].Name = "" }, false},
		"address as name":      {func(s *Scenario) { s.Deployments[0].Name = DefaultSender }, false},
		"duplicate name":       {func(s *Scenario) { s.Deployments = append(s.Deployments, s.Deployments[0]) }, false},
		"unknown unit":         {func(s *Scenario) { s.Deployments[0].Unit = "unknown" }, false},
		"missing target":       {func(s *Scenario) { s.Calls[0].Target = "" }, false},
		"unknown target":       {func(s *Scenario) { s.Calls[0].Target = "x" }, false},
		"missing method":       {func(s *Scenario) { s.Calls[0].Method = "" }, false},
		"failure with results": {func(s *Scenario) { s.Calls[0].Fails = true; s.Calls[0].Expect = []any{true} }, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			scenario := valid()
			test.modify(scenario)
			err := Validate(scenario)
			if test.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestValidate_ReportsUnknownUnits(t *testing.T) {
	t.Parallel()

	err := Validate(&Scenario{Deployments: []Deployment{{Name: "x", Unit: "unknown"}}})
	require.True(t, errors.Is(err, courier.ErrUnknownCode))
	require.Error(t, Validate(nil))
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	scenario, err := Parse([]byte(sampleScenario))
	require.NoError(t, err)

	require.NoError(t, Save(path, scenario))
	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, scenario, loaded)
}

func TestSave_RejectsInvalidScenarios(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.Error(t, Save(path, nil))
	require.Error(t, Save(path, &Scenario{GasLimit: -1}))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestScenario_SenderAddress(t *testing.T) {
	t.Parallel()

	require.Equal(t, courier.Address{0x12, 19: 0x34}, (&Scenario{Sender: "0x1200000000000000000000000000000000000034"}).SenderAddress())
	require.Equal(t, courier.Address{18: 0xc0, 19: 0xde}, (&Scenario{}).SenderAddress())
}
