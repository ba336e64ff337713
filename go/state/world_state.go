// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state provides an in-memory world state for the Courier host. It
// keeps the persistent storage of all unit instances keyed by their address
// and offers a journaled transaction context supporting nested snapshots.
package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Courier/go/courier"
	"golang.org/x/exp/maps"
)

// WorldState maps unit instances and external accounts to their persisted
// account data. Accounts without nonce, code and storage are indistinguishable
// from missing ones; Equal and Diff treat both alike.
type WorldState map[courier.Address]Account

func (s WorldState) Equal(other WorldState) bool {
	return equalIgnoringZero(s, other, func(a, b Account) bool {
		return a.Equal(&b)
	})
}

func (s WorldState) Clone() WorldState {
	if s == nil {
		return nil
	}
	res := make(WorldState, len(s))
	for address, account := range s {
		res[address] = account.Clone()
	}
	return res
}

// Diff lists the differences between the two states in a stable order. Each
// entry is prefixed by the address of the affected account.
func (s WorldState) Diff(other WorldState) []string {
	var res []string
	for _, address := range unionOfKeys(s, other) {
		a, b := s[address], other[address]
		res = append(res, a.Diff(fmt.Sprintf("%v/", address), &b)...)
	}
	return res
}

// Account is the persisted data of a single address. Unit instances carry
// the hash of their unit code and their storage slots; external accounts
// only use the nonce.
type Account struct {
	Nonce   uint64
	Code    courier.Hash
	Storage Storage
}

// IsEmpty reports whether the account holds no data at all.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && a.Code == (courier.Hash{}) && a.Storage.Equal(nil)
}

func (a *Account) Equal(other *Account) bool {
	return a.Nonce == other.Nonce &&
		a.Code == other.Code &&
		a.Storage.Equal(other.Storage)
}

func (a *Account) Clone() Account {
	return Account{
		Nonce:   a.Nonce,
		Code:    a.Code,
		Storage: a.Storage.Clone(),
	}
}

// Diff lists the differences between the two accounts, each prefixed by the
// given prefix exactly once.
func (a *Account) Diff(prefix string, other *Account) []string {
	var res []string
	if a.Nonce != other.Nonce {
		res = append(res, fmt.Sprintf("%sdifferent nonce: %v != %v", prefix, a.Nonce, other.Nonce))
	}
	if a.Code != other.Code {
		res = append(res, fmt.Sprintf("%sdifferent code: %v != %v", prefix, a.Code, other.Code))
	}
	return append(res, a.Storage.Diff(prefix+"Storage/", other.Storage)...)
}

// Storage holds the slots of a single unit instance. A slot holding the zero
// word is the same as a slot never written.
type Storage map[courier.Key]courier.Word

func (s Storage) Equal(other Storage) bool {
	return equalIgnoringZero(s, other, func(a, b courier.Word) bool {
		return a == b
	})
}

func (s Storage) Clone() Storage {
	return maps.Clone(s)
}

// Diff lists the slots holding different values, each prefixed by the given
// prefix.
func (s Storage) Diff(prefix string, other Storage) []string {
	var res []string
	for _, key := range unionOfKeys(s, other) {
		if a, b := s[key], other[key]; a != b {
			res = append(res, fmt.Sprintf("%sdifferent value for key %v: %v != %v", prefix, key, a, b))
		}
	}
	return res
}

// equalIgnoringZero compares two maps treating absent and zero entries alike.
func equalIgnoringZero[K comparable, V any](a, b map[K]V, equal func(V, V) bool) bool {
	for k, v := range a {
		if !equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if _, found := a[k]; !found && !equal(v, a[k]) {
			return false
		}
	}
	return true
}

// unionOfKeys returns the keys present in any of the two maps, sorted by their
// string representation.
func unionOfKeys[K interface {
	comparable
	fmt.Stringer
}, V any](a, b map[K]V) []K {
	keys := maps.Keys(a)
	for k := range b {
		if _, found := a[k]; !found {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(x, y K) int {
		return strings.Compare(x.String(), y.String())
	})
	return keys
}
