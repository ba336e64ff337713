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
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
)

func TestAddress_JSON_Encoding(t *testing.T) {
	tests := []struct {
		address Address
		json    string
	}{
		{Address{}, "\"0x0000000000000000000000000000000000000000\""},
		{Address{1}, "\"0x0100000000000000000000000000000000000000\""},
		{Address{0xAB}, "\"0xab00000000000000000000000000000000000000\""},
		{
			Address{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
			"\"0x000102030405060708090a0b0c0d0e0f10111213\"",
		},
	}

	for _, test := range tests {
		encoded, err := json.Marshal(test.address)
		if err != nil {
			t.Fatalf("failed to encode into JSON: %v", err)
		}

		if want, got := test.json, string(encoded); want != got {
			t.Errorf("unexpected JSON encoding, wanted %v, got %v", want, got)
		}

		var restored Address
		if err := json.Unmarshal(encoded, &restored); err != nil {
			t.Fatalf("failed to restore address: %v", err)
		}
		if test.address != restored {
			t.Errorf("unexpected restored value, wanted %v, got %v", test.address, restored)
		}
	}
}

func TestAddress_JSON_InvalidValueDecodingFails(t *testing.T) {
	tests := map[string]string{
		"empty":                 "\"\"",
		"empty with hex prefix": "\"0x\"",
		"no hex prefix":         "\"0000000000000000000000000000000000000000\"",
		"just too short":        "\"0x000102030405060708090a0b0c0d0e0f1011121\"",
		"too long":              "\"0x000000000000000000000000000000000000000000\"",
		"invalid hex":           "\"0x0g00000000000000000000000000000000000000\"",
		"not a JSON string":     "0x000102030405060708090a0b0c0d0e0f10111213",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var address Address
			if json.Unmarshal([]byte(data), &address) == nil {
				t.Errorf("expected decoding to fail, but instead it produced %v", address)
			}
		})
	}
}

func TestWord_BoolEncoding(t *testing.T) {
	for _, value := range []bool{true, false} {
		if want, got := value, WordFromBool(value).Bool(); want != got {
			t.Errorf("unexpected decoded value, wanted %t, got %t", want, got)
		}
	}
	if (WordFromBool(false) != Word{}) {
		t.Errorf("false must be encoded as the zero word")
	}
	if want, got := uint64(1), WordFromBool(true).ToUint256().Uint64(); want != got {
		t.Errorf("unexpected encoding of true, wanted %d, got %d", want, got)
	}
}

func TestWord_AddressEncodingIsRightAligned(t *testing.T) {
	address := Address{1, 2, 3, 19: 20}
	word := WordFromAddress(address)
	if want, got := address, word.Address(); want != got {
		t.Errorf("unexpected decoded address, wanted %v, got %v", want, got)
	}
	for i := 0; i < 12; i++ {
		if word[i] != 0 {
			t.Fatalf("expected leading zero bytes, got %v", word)
		}
	}
	if want, got := byte(20), word[31]; want != got {
		t.Errorf("unexpected last byte, wanted %d, got %d", want, got)
	}
}

func TestWord_Uint256Conversion(t *testing.T) {
	tests := map[string]*uint256.Int{
		"zero":  uint256.NewInt(0),
		"one":   uint256.NewInt(1),
		"large": new(uint256.Int).Lsh(uint256.NewInt(1), 255),
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := value, WordFromUint256(value).ToUint256(); !want.Eq(got) {
				t.Errorf("unexpected conversion result, wanted %v, got %v", want, got)
			}
		})
	}
	if (WordFromUint256(nil) != Word{}) {
		t.Errorf("nil must be converted to the zero word")
	}
}

func TestNewKey_EncodesSlotIndexBigEndian(t *testing.T) {
	key := NewKey(0x0102)
	if key[30] != 1 || key[31] != 2 {
		t.Errorf("unexpected key encoding: %v", key)
	}
	if NewKey(0) != (Key{}) {
		t.Errorf("slot 0 must be the zero key")
	}
}

func TestCallKind_JSON(t *testing.T) {
	for _, kind := range []CallKind{Call, Create} {
		encoded, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", kind, err)
		}
		var restored CallKind
		if err := json.Unmarshal(encoded, &restored); err != nil {
			t.Fatalf("failed to decode %s: %v", encoded, err)
		}
		if kind != restored {
			t.Errorf("unexpected restored kind, wanted %v, got %v", kind, restored)
		}
	}
	if _, err := json.Marshal(CallKind(42)); err == nil {
		t.Errorf("expected encoding of invalid kind to fail")
	}
	var kind CallKind
	if err := json.Unmarshal([]byte("\"delegate_call\""), &kind); err == nil {
		t.Errorf("expected decoding of unknown kind to fail")
	}
}

func TestCallContext_String(t *testing.T) {
	ctx := CallContext{Caller: Address{1}, CallerIsOrigin: true, Self: Address{2}}
	want := "caller=0x0100000000000000000000000000000000000000, callerIsOrigin=true, self=0x0200000000000000000000000000000000000000"
	if got := ctx.String(); want != got {
		t.Errorf("unexpected string, wanted %v, got %v", want, got)
	}
}
