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
	"math/big"
	"testing"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var argsABI = courier.MustParseABI(`[
	{"type":"function","name":"f","inputs":[
		{"name":"b","type":"bool"},
		{"name":"a","type":"address"},
		{"name":"s","type":"string"},
		{"name":"u8","type":"uint8"},
		{"name":"u256","type":"uint256"},
		{"name":"i16","type":"int16"},
		{"name":"i256","type":"int256"}
	],"outputs":[]}
]`)

func resolveTestNames(name string) (courier.Address, bool) {
	if name == "unit" {
		return courier.Address{0x42}, true
	}
	return courier.Address{}, false
}

func TestConvertArgs_ConvertsToABITypes(t *testing.T) {
	t.Parallel()

	inputs := argsABI.Methods["f"].Inputs
	values := []any{true, "unit", "text", 255, "0xff", -5, "-1000000000000000000000"}

	got, err := ConvertArgs(inputs, values, resolveTestNames)
	require.NoError(t, err)

	large, ok := new(big.Int).SetString("-1000000000000000000000", 10)
	require.True(t, ok)
	require.Equal(t, true, got[0])
	require.Equal(t, common.Address{0x42}, got[1])
	require.Equal(t, "text", got[2])
	require.Equal(t, uint8(255), got[3])
	require.Zero(t, got[4].(*big.Int).Cmp(big.NewInt(255)))
	require.Equal(t, int16(-5), got[5])
	require.Zero(t, got[6].(*big.Int).Cmp(large))

	_, err = argsABI.Pack("f", got...)
	require.NoError(t, err)
}

func TestConvertArgs_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	inputs := argsABI.Methods["f"].Inputs
	valid := func() []any {
		return []any{true, "unit", "text", 1, 1, 1, 1}
	}

	tests := map[string]struct {
		index int
		value any
	}{
		"bool as string":     {0, "true"},
		"unknown address":    {1, "nobody"},
		"address as integer": {1, 5},
		"string as bool":     {2, false},
		"uint8 overflow":     {3, 256},
		"negative unsigned":  {4, -1},
		"malformed integer":  {4, "12a"},
		"integer as float":   {4, 1.5},
		"int16 overflow":     {5, 32768},
		"int16 underflow":    {5, -32769},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			values := valid()
			values[test.index] = test.value
			_, err := ConvertArgs(inputs, values, resolveTestNames)
			require.Error(t, err)
		})
	}

	_, err := ConvertArgs(inputs, valid()[:2], resolveTestNames)
	require.Error(t, err)
}

func TestConvertArgs_AcceptsHexAddresses(t *testing.T) {
	t.Parallel()

	arguments := argsABI.Methods["f"].Inputs[1:2]
	got, err := ConvertArgs(arguments, []any{"0x00000000000000000000000000000000000000ff"}, nil)
	require.NoError(t, err)
	require.Equal(t, []any{common.Address{19: 0xff}}, got)
}

func TestMatchResults(t *testing.T) {
	t.Parallel()

	outputs := argsABI.Methods["f"].Inputs[3:5]

	require.NoError(t, MatchResults(outputs, []any{7, "7"}, []any{uint8(7), big.NewInt(7)}, nil))
	require.Error(t, MatchResults(outputs, []any{7, 8}, []any{uint8(7), big.NewInt(7)}, nil))
	require.Error(t, MatchResults(outputs, []any{7, 7}, []any{uint8(7)}, nil))
	require.Error(t, MatchResults(outputs, []any{"x", 7}, []any{uint8(7), big.NewInt(7)}, nil))
}
