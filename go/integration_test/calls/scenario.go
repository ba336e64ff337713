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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/state"
)

// Scenario represents a test scenario for a processor. A scenario consists
// of a world state before and after the transaction, the transaction to be
// executed, and the expected receipt.
type Scenario struct {
	Before      state.WorldState
	After       state.WorldState
	Transaction courier.Transaction
	Receipt     courier.Receipt // GasUsed is only checked if positive
	Err         error           // the expected failure of the call chain
}

func (s *Scenario) Run(t *testing.T, processor courier.Processor) {
	t.Helper()
	context := state.NewContext(s.Before)
	receipt, err := processor.Run(s.Transaction, context)
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}

	if want, got := s.After, context.State(); !want.Equal(got) {
		diff := strings.Join(got.Diff(want), "\n\t")
		t.Fatalf("unexpected world state after the transaction: \n\t%v", diff)
	}

	if want, got := s.Receipt.Success, receipt.Success; want != got {
		t.Errorf("unexpected success, want %v, got %v (%v)", want, got, receipt.Err)
	}
	if want, got := s.Receipt.GasUsed, receipt.GasUsed; want > 0 && want != got {
		t.Errorf("unexpected gas used, want %v, got %v", want, got)
	}
	if want, got := s.Receipt.Output, receipt.Output; !bytes.Equal(want, got) {
		t.Errorf("unexpected output, want %x, got %x", want, got)
	}
	if s.Err == nil && receipt.Err != nil {
		t.Errorf("unexpected failure: %v", receipt.Err)
	}
	if s.Err != nil && !errors.Is(receipt.Err, s.Err) {
		t.Errorf("unexpected failure, want %v, got %v", s.Err, receipt.Err)
	}
}
