// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package source

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/units/destination"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/mock/gomock"
	"pgregory.net/rand"
)

func TestUnit_IsRegistered(t *testing.T) {
	if courier.GetUnit(CodeHash) == nil {
		t.Fatalf("source unit is not registered")
	}
	if courier.GetUnit(destination.CodeHash) == nil {
		t.Fatalf("destination unit is not registered")
	}
}

func TestUnit_ConstructStoresValueAndReferenceVerbatim(t *testing.T) {
	tests := map[string]struct {
		value       bool
		destination courier.Address
	}{
		"true":             {true, courier.Address{1}},
		"false":            {false, courier.Address{2}},
		"zero destination": {true, courier.Address{}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ctx := courier.NewMockRunContext(ctrl)
			ctx.EXPECT().SetStorage(courier.NewKey(0), courier.WordFromBool(test.value))
			ctx.EXPECT().SetStorage(courier.NewKey(1), courier.WordFromAddress(test.destination))

			input := pack(t, "", test.value, common.Address(test.destination))
			if _, err := (Unit{}).Construct(courier.Parameters{Context: ctx, Kind: courier.Create, Input: input}); err != nil {
				t.Errorf("construction failed: %v", err)
			}
		})
	}
}

func TestUnit_ConstructRequiresArguments(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := courier.NewMockRunContext(ctrl)

	_, err := Unit{}.Construct(courier.Parameters{Context: ctx, Kind: courier.Create})
	if !errors.Is(err, courier.ErrInvalidInput) {
		t.Errorf("unexpected error, wanted %v, got %v", courier.ErrInvalidInput, err)
	}
}

func TestUnit_LocalFlipDoesNotTouchDestination(t *testing.T) {
	rnd := rand.New(0)
	for i := 0; i < 100; i++ {
		value := rnd.Intn(2) == 1
		ctx := newMemoryContext()
		construct(t, ctx, value, courier.Address{0xD})

		if want, got := value, get(t, ctx); want != got {
			t.Errorf("unexpected value after construction, wanted %t, got %t", want, got)
		}
		run(t, ctx, "flip")
		if want, got := !value, get(t, ctx); want != got {
			t.Errorf("unexpected value after flip, wanted %t, got %t", want, got)
		}
		if len(ctx.calls) != 0 {
			t.Errorf("local operations issued calls: %v", ctx.calls)
		}
	}
}

func TestUnit_DestinationFlipForwardsToDestination(t *testing.T) {
	call := courier.CallContext{
		Caller:         courier.Address{1},
		CallerIsOrigin: true,
		Self:           courier.Address{2},
	}
	target := courier.Address{3}
	flip, err := destination.Unit{}.ABI().Pack("flip")
	if err != nil {
		t.Fatalf("failed to encode flip: %v", err)
	}

	ctrl := gomock.NewController(t)
	ctx := courier.NewMockRunContext(ctrl)
	gomock.InOrder(
		ctx.EXPECT().GetStorage(courier.NewKey(1)).Return(courier.WordFromAddress(target), nil),
		ctx.EXPECT().EmitDiagnostic("source destinationFlip",
			"caller", call.Caller,
			"callerIsOrigin", true,
			"self", call.Self,
			"destination", target,
		),
		ctx.EXPECT().Call(target, courier.Data(flip), courier.Gas(0)).Return(courier.CallResult{}, nil),
	)

	if err := New(ctx, call).DestinationFlip(); err != nil {
		t.Errorf("destinationFlip failed: %v", err)
	}
}

func TestUnit_DestinationFlipPropagatesFailuresUnchanged(t *testing.T) {
	tests := map[string]error{
		"missing unit":      &courier.DispatchError{Kind: courier.Call, Err: courier.ErrUnitNotFound},
		"unknown operation": &courier.DispatchError{Kind: courier.Call, Err: courier.ErrUnknownOperation},
		"out of gas":        courier.ErrOutOfGas,
	}

	for name, failure := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ctx := courier.NewMockRunContext(ctrl)
			ctx.EXPECT().GetStorage(courier.NewKey(1)).Return(courier.WordFromAddress(courier.Address{3}), nil)
			ctx.EXPECT().EmitDiagnostic(gomock.Any(), gomock.Any()).AnyTimes()
			ctx.EXPECT().Call(gomock.Any(), gomock.Any(), gomock.Any()).Return(courier.CallResult{}, failure)

			_, err := Unit{}.Run(courier.Parameters{Context: ctx, Input: pack(t, "destinationFlip")})
			if err != failure {
				t.Errorf("unexpected failure, wanted %v, got %v", failure, err)
			}
		})
	}
}

func TestUnit_DestinationIsReadFromStorage(t *testing.T) {
	ctx := newMemoryContext()
	construct(t, ctx, false, courier.Address{0xD})

	ref, err := New(ctx, courier.CallContext{}).Destination()
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if want, got := (courier.Address{0xD}), ref.Address(); want != got {
		t.Errorf("unexpected destination, wanted %v, got %v", want, got)
	}
}

func TestUnit_UnknownOperationsAreRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := courier.NewMockRunContext(ctrl)

	_, err := Unit{}.Run(courier.Parameters{Context: ctx, Input: []byte{1, 2, 3, 4}})
	if !errors.Is(err, courier.ErrUnknownOperation) {
		t.Errorf("unexpected error, wanted %v, got %v", courier.ErrUnknownOperation, err)
	}
}

func pack(t *testing.T, method string, args ...any) courier.Data {
	t.Helper()
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		t.Fatalf("failed to encode %q: %v", method, err)
	}
	return input
}

func construct(t *testing.T, ctx courier.RunContext, value bool, target courier.Address) {
	t.Helper()
	input := pack(t, "", value, common.Address(target))
	if _, err := (Unit{}).Construct(courier.Parameters{Context: ctx, Kind: courier.Create, Input: input}); err != nil {
		t.Fatalf("construction failed: %v", err)
	}
}

func run(t *testing.T, ctx courier.RunContext, method string) courier.Data {
	t.Helper()
	result, err := Unit{}.Run(courier.Parameters{Context: ctx, Input: pack(t, method)})
	if err != nil {
		t.Fatalf("%s failed: %v", method, err)
	}
	return result.Output
}

func get(t *testing.T, ctx courier.RunContext) bool {
	t.Helper()
	values, err := contractABI.Unpack("get", run(t, ctx, "get"))
	if err != nil {
		t.Fatalf("failed to decode result of get: %v", err)
	}
	return values[0].(bool)
}

// memoryContext is a run context of a single instance without a host. Calls
// are recorded and fail.
type memoryContext struct {
	storage map[courier.Key]courier.Word
	calls   []courier.Address
}

func newMemoryContext() *memoryContext {
	return &memoryContext{storage: map[courier.Key]courier.Word{}}
}

func (c *memoryContext) GetStorage(key courier.Key) (courier.Word, error) {
	return c.storage[key], nil
}

func (c *memoryContext) SetStorage(key courier.Key, value courier.Word) error {
	c.storage[key] = value
	return nil
}

func (c *memoryContext) Call(target courier.Address, _ courier.Data, _ courier.Gas) (courier.CallResult, error) {
	c.calls = append(c.calls, target)
	return courier.CallResult{}, courier.ErrUnitNotFound
}

func (c *memoryContext) GasLeft() courier.Gas {
	return 0
}

func (c *memoryContext) EmitDiagnostic(string, ...any) {}
