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

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package courier

// WorldState is an interface to access and manipulate the persistent state
// managed by the host. The state is a collection of accounts, each with a
// nonce, an optional unit code hash and storage. Accounts with a code hash
// are deployed unit instances, all others are external accounts.
type WorldState interface {
	AccountExists(Address) bool

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCodeHash(Address) Hash
	SetCodeHash(Address, Hash)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word)
}

// TransactionContext is an interface to access and manipulate the world
// state in a transaction. All modifications on the world state are buffered
// in a transaction context, which can be snapshot and restored.
type TransactionContext interface {
	WorldState

	CreateSnapshot() Snapshot
	RestoreSnapshot(Snapshot)
}
