// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package source implements the Source unit. A Source owns a boolean and a
// reference to a Destination instance, and forwards flips to that
// Destination through the host.
package source

import (
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/units/destination"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Name is the name under which the unit code is registered.
const Name = "source"

// CodeHash identifies the Source code in deployed accounts.
var CodeHash = courier.CodeHash(Name)

var contractABI = courier.MustParseABI(`[
	{"type":"constructor","inputs":[{"name":"initValue","type":"bool"},{"name":"destination","type":"address"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"flip","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"get","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"destinationFlip","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
]`)

var (
	valueSlot       = courier.NewKey(0)
	destinationSlot = courier.NewKey(1)
)

func init() {
	if err := courier.RegisterUnit(Name, Unit{}); err != nil {
		panic(err)
	}
}

// Unit is the code of the Source unit.
type Unit struct{}

func (Unit) ABI() *abi.ABI {
	return &contractABI
}

// Construct initializes a new instance. The destination reference is stored
// as given; it is not checked whether a Destination is deployed there.
func (Unit) Construct(params courier.Parameters) (courier.Result, error) {
	args, err := courier.DecodeConstructor(&contractABI, params.Input)
	if err != nil {
		return courier.Result{}, err
	}
	initValue := args[0].(bool)
	ref := destination.NewRef(courier.Address(args[1].(common.Address)))
	return courier.Result{}, New(params.Context, params.CallContext).Init(initValue, ref)
}

func (Unit) Run(params courier.Parameters) (courier.Result, error) {
	method, _, err := courier.DecodeCall(&contractABI, params.Input)
	if err != nil {
		return courier.Result{}, err
	}
	source := New(params.Context, params.CallContext)
	switch method.Name {
	case "flip":
		return courier.Result{}, source.Flip()
	case "get":
		value, err := source.Get()
		if err != nil {
			return courier.Result{}, err
		}
		output, err := courier.EncodeOutput(method, value)
		return courier.Result{Output: output}, err
	case "destinationFlip":
		return courier.Result{}, source.DestinationFlip()
	}
	return courier.Result{}, fmt.Errorf("%w: %s", courier.ErrUnknownOperation, method.Name)
}

// Source is a Source instance bound to a single invocation.
type Source struct {
	ctx  courier.RunContext
	call courier.CallContext
}

// New binds the instance provided by the given run context to an invocation
// described by the given call context.
func New(ctx courier.RunContext, call courier.CallContext) *Source {
	return &Source{ctx: ctx, call: call}
}

// Init sets the state of a freshly constructed instance.
func (s *Source) Init(initValue bool, ref destination.Ref) error {
	if err := s.ctx.SetStorage(valueSlot, courier.WordFromBool(initValue)); err != nil {
		return err
	}
	return s.ctx.SetStorage(destinationSlot, courier.WordFromAddress(ref.Address()))
}

// Flip negates the own stored value. The referenced Destination is not
// involved.
func (s *Source) Flip() error {
	value, err := s.Get()
	if err != nil {
		return err
	}
	return s.ctx.SetStorage(valueSlot, courier.WordFromBool(!value))
}

// Get returns the own stored value.
func (s *Source) Get() (bool, error) {
	word, err := s.ctx.GetStorage(valueSlot)
	if err != nil {
		return false, err
	}
	return word.Bool(), nil
}

// Destination returns the stored reference to the Destination instance.
func (s *Source) Destination() (destination.Ref, error) {
	word, err := s.ctx.GetStorage(destinationSlot)
	if err != nil {
		return destination.Ref{}, err
	}
	return destination.NewRef(word.Address()), nil
}

// DestinationFlip flips the referenced Destination. The own call context and
// the destination address are emitted as diagnostics before the call is
// issued. A failure of the call is returned unchanged.
func (s *Source) DestinationFlip() error {
	ref, err := s.Destination()
	if err != nil {
		return err
	}
	s.ctx.EmitDiagnostic("source destinationFlip",
		"caller", s.call.Caller,
		"callerIsOrigin", s.call.CallerIsOrigin,
		"self", s.call.Self,
		"destination", ref.Address(),
	)
	return ref.Flip(s.ctx)
}
