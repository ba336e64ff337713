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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Courier/go/config"
	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/units/destination"
	"github.com/Fantom-foundation/Courier/go/units/source"
)

func TestRunScenario_ScenarioFilesPass(t *testing.T) {
	files, err := filepath.Glob("scenarios/*.yaml")
	if err != nil {
		t.Fatalf("failed to list scenarios: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no scenario files found")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := config.Load(file)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}
			reports, err := runScenario(context.Background(), scenario, 0)
			if err != nil {
				t.Fatalf("scenario failed: %v", err)
			}
			if want, got := len(scenario.Calls), len(reports); want != got {
				t.Errorf("unexpected number of reports, wanted %d, got %d", want, got)
			}
			for _, report := range reports {
				if report.gasUsed <= 0 {
					t.Errorf("call %s.%s reports no gas usage", report.call.Target, report.call.Method)
				}
			}
		})
	}
}

func TestRunScenario_ConcreteScenarioReportsResults(t *testing.T) {
	scenario, err := config.Load("scenarios/concrete.yaml")
	if err != nil {
		t.Fatalf("failed to load scenario: %v", err)
	}
	reports, err := runScenario(context.Background(), scenario, 0)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	want := [][]any{nil, {true}, {false}, nil, {false}, {false}}
	for i, report := range reports {
		if len(report.results) != len(want[i]) {
			t.Errorf("call %d: unexpected results %v, wanted %v", i, report.results, want[i])
			continue
		}
		for j := range want[i] {
			if report.results[j] != want[i][j] {
				t.Errorf("call %d: unexpected results %v, wanted %v", i, report.results, want[i])
			}
		}
	}
}

func TestRunScenario_UnmetExpectationsAreReported(t *testing.T) {
	tests := map[string]config.Call{
		"wrong result":       {Target: "d", Method: "get", Expect: []any{false}},
		"unexpected success": {Target: "d", Method: "flip", Fails: true},
		"unexpected failure": {Target: "0x00000000000000000000000000000000000000ff", Method: "flip"},
	}

	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			scenario := &config.Scenario{
				Deployments: []config.Deployment{{Name: "d", Unit: destination.Name, Args: []any{true}}},
				Calls:       []config.Call{call},
			}
			if err := config.Validate(scenario); err != nil {
				t.Fatalf("invalid scenario: %v", err)
			}
			reports, err := runScenario(context.Background(), scenario, 0)
			if !errors.Is(err, errExpectation) {
				t.Errorf("unexpected error, wanted %v, got %v", errExpectation, err)
			}
			if len(reports) != 1 {
				t.Errorf("unexpected number of reports: %d", len(reports))
			}
		})
	}
}

func TestRunScenario_InvalidScenariosAbort(t *testing.T) {
	tests := map[string]struct {
		scenario *config.Scenario
		gasLimit courier.Gas
	}{
		"gas limit below intrinsic costs": {
			scenario: &config.Scenario{
				Deployments: []config.Deployment{{Name: "d", Unit: destination.Name, Args: []any{true}}},
			},
			gasLimit: 30_000,
		},
		"invalid constructor argument": {
			scenario: &config.Scenario{
				Deployments: []config.Deployment{{Name: "s", Unit: source.Name, Args: []any{true, "nowhere"}}},
			},
		},
		"arguments for unknown operation": {
			scenario: &config.Scenario{
				Calls: []config.Call{{Target: "0x00000000000000000000000000000000000000ff", Method: "flip", Args: []any{1}}},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if err := config.Validate(test.scenario); err != nil {
				t.Fatalf("invalid scenario: %v", err)
			}
			_, err := runScenario(context.Background(), test.scenario, test.gasLimit)
			if err == nil || errors.Is(err, errExpectation) {
				t.Errorf("scenario should have been aborted, got %v", err)
			}
		})
	}
}

func TestRunCmd_PrintsReports(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run([]string{"driver", "run", "--jobs", "2", "scenarios/concrete.yaml", "scenarios/reserved_address.yaml"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"scenarios/concrete.yaml:", "scenarios/reserved_address.yaml:", "source.destinationFlip: ok", "PASSED"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
}

func TestRunCmd_FailsOnUnmetExpectations(t *testing.T) {
	file := filepath.Join(t.TempDir(), "failing.yaml")
	contents := "deployments: [{name: d, unit: destination, args: [false]}]\ncalls: [{target: d, method: get, expect: [true]}]\n"
	if err := os.WriteFile(file, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write scenario: %v", err)
	}

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.Run([]string{"driver", "run", file}); err == nil {
		t.Errorf("run should have failed")
	}
	if !strings.Contains(out.String(), "FAILED") {
		t.Errorf("output does not report the failure:\n%s", out.String())
	}
}

func TestRunCmd_RejectsInvalidInvocations(t *testing.T) {
	tests := map[string][]string{
		"no files":          {"driver", "run"},
		"invalid log level": {"driver", "run", "--log-level", "loud", "scenarios/concrete.yaml"},
		"missing file":      {"driver", "run", "scenarios/missing.yaml"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			if err := app.Run(args); err == nil {
				t.Errorf("run should have failed")
			}
		})
	}
}

func TestListCmd_ListsUnitsAndOperations(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	if err := app.Run([]string{"driver", "list"}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"destination (code", "source (code", "destinationFlip()", "get()", "flip()"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
}
