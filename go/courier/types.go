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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Address represents the 160-bit (20 bytes) address of a deployed unit or of
// an external account. Unit addresses are assigned by the host at deployment
// time and are immutable afterwards.
type Address [20]byte

// Key represents the 256-bit (32 bytes) key of a storage slot.
type Key [32]byte

// Word represents an arbitrary 256-bit (32 byte) word stored in a slot.
type Word [32]byte

// Hash represents the 256-bit (32 bytes) hash of a unit's code.
type Hash [32]byte

// Selector identifies an operation of a unit. It is the 4-byte method ID of
// the operation's signature.
type Selector [4]byte

// Data represents the input or output of unit invocations.
type Data []byte

// Gas represents the execution budget of a call chain.
type Gas int64

// Snapshot is a type used to represent a snapshot of the world state in a
// transaction context.
type Snapshot int

// CallKind is an enum distinguishing the construction of a unit from the
// invocation of one of its operations.
type CallKind int

const (
	Call CallKind = iota
	Create
)

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:])
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (k Key) String() string {
	return fmt.Sprintf("0x%x", k[:])
}

func (w Word) String() string {
	return fmt.Sprintf("0x%x", w[:])
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func (s Selector) String() string {
	return fmt.Sprintf("0x%x", s[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return bytesToText(h[:])
}

func (h *Hash) UnmarshalText(data []byte) error {
	return textToBytes(h[:], data)
}

// NewKey creates a storage key for the slot with the given index.
func NewKey(slot uint64) Key {
	return Key(uint256.NewInt(slot).Bytes32())
}

// WordFromBool encodes a boolean as a word with the least significant byte
// set to 1 for true.
func WordFromBool(value bool) (w Word) {
	if value {
		w[31] = 1
	}
	return w
}

// Bool decodes a word produced by WordFromBool. Any non-zero word is true.
func (w Word) Bool() bool {
	return w != Word{}
}

// WordFromAddress encodes an address right-aligned in a word.
func WordFromAddress(address Address) (w Word) {
	copy(w[12:], address[:])
	return w
}

// Address decodes the address stored right-aligned in this word.
func (w Word) Address() (a Address) {
	copy(a[:], w[12:])
	return a
}

// WordFromUint256 converts a *uint256.Int to a Word.
// If the input is nil, it returns 0.
func WordFromUint256(value *uint256.Int) (result Word) {
	if value == nil {
		return result
	}
	return value.Bytes32()
}

func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(w[:])
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	data, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(trg), len(data); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg[:], data)
	return nil
}

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case Create:
		return "create"
	default:
		return "unknown"
	}
}

func (k CallKind) MarshalJSON() ([]byte, error) {
	var res string
	switch k {
	case Call, Create:
		res = k.String()
	default:
		return nil, fmt.Errorf("invalid call kind: %v", k)
	}
	return json.Marshal(res)
}

func (k *CallKind) UnmarshalJSON(data []byte) error {
	var kind string
	if err := json.Unmarshal(data, &kind); err != nil {
		return err
	}
	switch strings.ToLower(kind) {
	case "call":
		*k = Call
	case "create":
		*k = Create
	default:
		return fmt.Errorf("unknown call kind: %s", kind)
	}
	return nil
}
