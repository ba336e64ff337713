// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package destination implements the Destination unit, a leaf unit owning a
// single boolean which reports the context of every flip of that boolean.
package destination

import (
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Name is the name under which the unit code is registered.
const Name = "destination"

// CodeHash identifies the Destination code in deployed accounts.
var CodeHash = courier.CodeHash(Name)

var contractABI = courier.MustParseABI(`[
	{"type":"constructor","inputs":[{"name":"initValue","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"flip","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"get","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"}
]`)

var valueSlot = courier.NewKey(0)

func init() {
	if err := courier.RegisterUnit(Name, Unit{}); err != nil {
		panic(err)
	}
}

// Unit is the code of the Destination unit. It is stateless; all state is
// kept in the storage of the invoked instance.
type Unit struct{}

func (Unit) ABI() *abi.ABI {
	return &contractABI
}

// Construct initializes a new instance. An empty input initializes the
// stored value to false.
func (Unit) Construct(params courier.Parameters) (courier.Result, error) {
	initValue := false
	if len(params.Input) > 0 {
		args, err := courier.DecodeConstructor(&contractABI, params.Input)
		if err != nil {
			return courier.Result{}, err
		}
		initValue = args[0].(bool)
	}
	return courier.Result{}, New(params.Context, params.CallContext).Init(initValue)
}

func (Unit) Run(params courier.Parameters) (courier.Result, error) {
	method, _, err := courier.DecodeCall(&contractABI, params.Input)
	if err != nil {
		return courier.Result{}, err
	}
	destination := New(params.Context, params.CallContext)
	switch method.Name {
	case "flip":
		return courier.Result{}, destination.Flip()
	case "get":
		value, err := destination.Get()
		if err != nil {
			return courier.Result{}, err
		}
		output, err := courier.EncodeOutput(method, value)
		return courier.Result{Output: output}, err
	}
	return courier.Result{}, fmt.Errorf("%w: %s", courier.ErrUnknownOperation, method.Name)
}

// Destination is a Destination instance bound to a single invocation.
type Destination struct {
	ctx  courier.RunContext
	call courier.CallContext
}

// New binds the instance provided by the given run context to an invocation
// described by the given call context.
func New(ctx courier.RunContext, call courier.CallContext) *Destination {
	return &Destination{ctx: ctx, call: call}
}

// Init sets the stored value of a freshly constructed instance.
func (d *Destination) Init(initValue bool) error {
	return d.ctx.SetStorage(valueSlot, courier.WordFromBool(initValue))
}

// Flip negates the stored value. The caller, the caller-is-origin flag and
// the address of the instance are emitted as diagnostics.
func (d *Destination) Flip() error {
	d.ctx.EmitDiagnostic("destination flip",
		"caller", d.call.Caller,
		"callerIsOrigin", d.call.CallerIsOrigin,
		"self", d.call.Self,
	)
	value, err := d.Get()
	if err != nil {
		return err
	}
	return d.ctx.SetStorage(valueSlot, courier.WordFromBool(!value))
}

// Get returns the stored value.
func (d *Destination) Get() (bool, error) {
	word, err := d.ctx.GetStorage(valueSlot)
	if err != nil {
		return false, err
	}
	return word.Bool(), nil
}
