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
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Resolver maps deployment names to the addresses of the deployed units.
type Resolver func(name string) (courier.Address, bool)

// ConvertArgs converts scenario values to the Go types expected by the ABI
// encoding of the given arguments. Supported are booleans, addresses given
// as deployment names or hex strings, strings, and integers given as YAML
// integers or as decimal or 0x-prefixed hex strings.
func ConvertArgs(arguments abi.Arguments, values []any, resolve Resolver) ([]any, error) {
	if want, got := len(arguments), len(values); want != got {
		return nil, fmt.Errorf("wrong number of arguments, wanted %d, got %d", want, got)
	}
	res := make([]any, 0, len(values))
	for i, argument := range arguments {
		value, err := convert(argument.Type, values[i], resolve)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		res = append(res, value)
	}
	return res, nil
}

// MatchResults checks that the decoded results of an operation equal the
// given expected scenario values.
func MatchResults(arguments abi.Arguments, expected []any, results []any, resolve Resolver) error {
	want, err := ConvertArgs(arguments, expected, resolve)
	if err != nil {
		return fmt.Errorf("invalid expectation: %w", err)
	}
	if len(results) != len(want) {
		return fmt.Errorf("unexpected number of results, wanted %d, got %d", len(want), len(results))
	}
	for i := range want {
		if !equalValues(want[i], results[i]) {
			return fmt.Errorf("unexpected result %d, wanted %v, got %v", i, want[i], results[i])
		}
	}
	return nil
}

// ParseAddress resolves the given deployment name or hex address.
func ParseAddress(s string, resolve Resolver) (courier.Address, error) {
	if resolve != nil {
		if address, found := resolve(s); found {
			return address, nil
		}
	}
	if common.IsHexAddress(s) {
		return courier.Address(common.HexToAddress(s)), nil
	}
	return courier.Address{}, fmt.Errorf("unknown address %q", s)
}

func convert(t abi.Type, value any, resolve Resolver) (any, error) {
	switch t.T {
	case abi.BoolTy:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case abi.StringTy:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case abi.AddressTy:
		if s, ok := value.(string); ok {
			address, err := ParseAddress(s, resolve)
			if err != nil {
				return nil, err
			}
			return common.Address(address), nil
		}
	case abi.IntTy, abi.UintTy:
		n, err := parseInteger(value, t.T == abi.IntTy)
		if err != nil {
			return nil, err
		}
		return integerOf(t, n)
	default:
		return nil, fmt.Errorf("unsupported argument type %v", t)
	}
	return nil, fmt.Errorf("value %v of type %T can not be used as %v", value, value, t)
}

func parseInteger(value any, signed bool) (*big.Int, error) {
	var text string
	switch v := value.(type) {
	case int, int64, uint64, uint:
		text = fmt.Sprint(v)
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil, fmt.Errorf("value %v of type %T is not an integer", value, value)
	}

	negative := strings.HasPrefix(text, "-")
	if negative {
		if !signed {
			return nil, fmt.Errorf("negative value %s for unsigned integer", text)
		}
		text = text[1:]
	}

	var abs *uint256.Int
	var err error
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		abs, err = uint256.FromHex(text)
	} else {
		abs, err = uint256.FromDecimal(text)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", text, err)
	}
	res := abs.ToBig()
	if negative {
		res.Neg(res)
	}
	return res, nil
}

// integerOf converts the given integer to the Go type used by the ABI
// encoding of t after checking that it is in the range of t.
func integerOf(t abi.Type, n *big.Int) (any, error) {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("value %v out of range for %v", n, t)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %v out of range for %v", n, t)
		}
	}

	goType := t.GetType()
	if goType.Kind() == reflect.Ptr {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
}

func equalValues(a, b any) bool {
	if x, ok := a.(*big.Int); ok {
		y, ok := b.(*big.Int)
		return ok && x.Cmp(y) == 0
	}
	return reflect.DeepEqual(a, b)
}
