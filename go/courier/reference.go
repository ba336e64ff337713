// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package courier

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Ref is a typed reference to a deployed unit instance. It combines the
// address of the instance with the operation set of the unit type T. The
// reference does not guarantee that the addressed instance implements T;
// this is only checked by the host when a call is dispatched. Thus, a
// reference to a missing or incompatible unit fails at call time, never
// at construction time.
//
// T is expected to be a value type whose zero value provides the ABI.
type Ref[T Interface] struct {
	address Address
}

// NewRef creates a reference to the unit of type T at the given address.
func NewRef[T Interface](address Address) Ref[T] {
	return Ref[T]{address: address}
}

// Address returns the address of the referenced unit.
func (r Ref[T]) Address() Address {
	return r.address
}

func (r Ref[T]) String() string {
	return r.address.String()
}

// Selector returns the selector of the given operation of T.
func (r Ref[T]) Selector(method string) (Selector, error) {
	var t T
	m, found := t.ABI().Methods[method]
	if !found {
		return Selector{}, fmt.Errorf("%w: %s", ErrUnknownOperation, method)
	}
	return SelectorOf(m.ID), nil
}

// Invoke calls the given operation of the referenced unit through the given
// run context, forwarding all remaining gas. The arguments and results are
// encoded using the ABI of T. Failures of the dispatched call are returned
// unchanged.
func (r Ref[T]) Invoke(ctx RunContext, method string, args ...any) ([]any, error) {
	var t T
	contract := t.ABI()
	input, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call of %s: %w", method, err)
	}
	result, err := ctx.Call(r.address, input, 0)
	if err != nil {
		return nil, err
	}
	outputs, err := contract.Unpack(method, result.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: result of %s from %v: %v", ErrInvalidOutput, method, r.address, err)
	}
	return outputs, nil
}

// DecodeCall resolves the operation selected by the given input and decodes
// its arguments. An input not selecting an operation of the given ABI fails
// with ErrUnknownOperation.
func DecodeCall(contract *abi.ABI, input Data) (*abi.Method, []any, error) {
	method, err := contract.MethodById(input)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: selector %v", ErrUnknownOperation, SelectorOf(input))
	}
	args, err := method.Inputs.Unpack(input[len(method.ID):])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: arguments of %s: %v", ErrInvalidInput, method.Name, err)
	}
	return method, args, nil
}

// DecodeConstructor decodes the constructor arguments of the given ABI.
func DecodeConstructor(contract *abi.ABI, input Data) ([]any, error) {
	args, err := contract.Constructor.Inputs.Unpack(input)
	if err != nil {
		return nil, fmt.Errorf("%w: constructor arguments: %v", ErrInvalidInput, err)
	}
	return args, nil
}

// EncodeOutput encodes the results of the given operation.
func EncodeOutput(method *abi.Method, values ...any) (Data, error) {
	output, err := method.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: results of %s: %v", ErrInvalidOutput, method.Name, err)
	}
	return output, nil
}

// MustParseABI parses the given JSON ABI definition. It panics if the
// definition is invalid; it is intended to be used for package level
// definitions of unit types.
func MustParseABI(definition string) abi.ABI {
	res, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Errorf("failed to parse ABI: %w", err))
	}
	return res
}
