// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"github.com/Fantom-foundation/Courier/go/courier"
)

// Context implements the courier.TransactionContext interface on top of an
// in-memory WorldState. All modifications are recorded in an undo journal;
// snapshots are positions in this journal. Commit drops the journal, making
// all modifications permanent.
//
// A Context is not safe for concurrent use. The host serializes all
// transactions operating on it.
type Context struct {
	current WorldState
	undo    []func()
}

// NewContext creates a context starting from a copy of the given state.
func NewContext(initial WorldState) *Context {
	current := initial.Clone()
	if current == nil {
		current = WorldState{}
	}
	return &Context{current: current}
}

func (c *Context) AccountExists(addr courier.Address) bool {
	account := c.current[addr]
	return !account.IsEmpty()
}

func (c *Context) GetNonce(addr courier.Address) uint64 {
	return c.current[addr].Nonce
}

func (c *Context) SetNonce(addr courier.Address, value uint64) {
	original := c.current[addr]
	modified := original
	modified.Nonce = value
	c.current[addr] = modified
	c.undo = append(c.undo, func() { c.current[addr] = original })
}

func (c *Context) GetCodeHash(addr courier.Address) courier.Hash {
	return c.current[addr].Code
}

func (c *Context) SetCodeHash(addr courier.Address, hash courier.Hash) {
	original := c.current[addr]
	modified := original
	modified.Code = hash
	c.current[addr] = modified
	c.undo = append(c.undo, func() { c.current[addr] = original })
}

func (c *Context) GetStorage(addr courier.Address, key courier.Key) courier.Word {
	return c.current[addr].Storage[key]
}

func (c *Context) SetStorage(addr courier.Address, key courier.Key, value courier.Word) {
	account := c.current[addr]
	if account.Storage == nil {
		account.Storage = Storage{}
		c.current[addr] = account
	}

	current, present := account.Storage[key]
	account.Storage[key] = value
	c.undo = append(c.undo, func() {
		if present {
			c.current[addr].Storage[key] = current
		} else {
			delete(c.current[addr].Storage, key)
		}
	})
}

func (c *Context) CreateSnapshot() courier.Snapshot {
	return courier.Snapshot(len(c.undo))
}

func (c *Context) RestoreSnapshot(snapshot courier.Snapshot) {
	for len(c.undo) > int(snapshot) {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

// Commit makes all modifications performed so far permanent. Snapshots
// created before the commit become invalid.
func (c *Context) Commit() {
	c.undo = nil
}

// State returns a copy of the current world state, excluding empty accounts.
func (c *Context) State() WorldState {
	res := make(WorldState, len(c.current))
	for addr, account := range c.current {
		if !account.IsEmpty() {
			res[addr] = account.Clone()
		}
	}
	return res
}
