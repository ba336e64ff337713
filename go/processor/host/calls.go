// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package host

import (
	"github.com/Fantom-foundation/Courier/go/courier"

	// geth dependencies
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func call(origin *frame, transaction courier.Transaction) (courier.Data, error) {
	output, _, err := origin.dispatch(courier.Call, *transaction.Recipient, transaction.Input, 0, nil)
	return output, err
}

func create(origin *frame, transaction courier.Transaction) (courier.Address, courier.Data, error) {
	address := UnitAddress(transaction.Sender, transaction.Nonce)
	codeHash := transaction.CodeHash
	output, _, err := origin.dispatch(courier.Create, address, transaction.Input, 0, &codeHash)
	return address, output, err
}

// UnitAddress returns the address of the unit constructed by the transaction
// of the given sender using the given nonce.
func UnitAddress(sender courier.Address, nonce uint64) courier.Address {
	return courier.Address(crypto.CreateAddress(common.Address(sender), nonce))
}
