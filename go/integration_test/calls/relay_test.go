// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package calls

import (
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/units/source"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// relay is a unit only used by the tests of this package. It forwards
// destinationFlip to a Source and offers no flip operation, making it an
// incompatible target for Source references.
type relay struct{}

const relayName = "relay"

var relayCode = courier.CodeHash(relayName)

var relayABI = courier.MustParseABI(`[
	{"type":"constructor","inputs":[{"name":"next","type":"address"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"get","inputs":[],"outputs":[{"name":"","type":"bool"}],"stateMutability":"view"},
	{"type":"function","name":"destinationFlip","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
]`)

var nextSlot = courier.NewKey(0)

func init() {
	if err := courier.RegisterUnit(relayName, relay{}); err != nil {
		panic(err)
	}
}

func (relay) ABI() *abi.ABI {
	return &relayABI
}

func (relay) Construct(params courier.Parameters) (courier.Result, error) {
	args, err := courier.DecodeConstructor(&relayABI, params.Input)
	if err != nil {
		return courier.Result{}, err
	}
	next := courier.Address(args[0].(common.Address))
	return courier.Result{}, params.Context.SetStorage(nextSlot, courier.WordFromAddress(next))
}

func (relay) Run(params courier.Parameters) (courier.Result, error) {
	method, _, err := courier.DecodeCall(&relayABI, params.Input)
	if err != nil {
		return courier.Result{}, err
	}
	switch method.Name {
	case "get":
		output, err := courier.EncodeOutput(method, false)
		return courier.Result{Output: output}, err
	case "destinationFlip":
		word, err := params.Context.GetStorage(nextSlot)
		if err != nil {
			return courier.Result{}, err
		}
		next := courier.NewRef[source.Unit](word.Address())
		_, err = next.Invoke(params.Context, "destinationFlip")
		return courier.Result{}, err
	}
	return courier.Result{}, fmt.Errorf("%w: %s", courier.ErrUnknownOperation, method.Name)
}
