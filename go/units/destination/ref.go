// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package destination

import (
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
)

// Ref is a typed reference to a deployed Destination instance. Whether the
// referenced address actually hosts a Destination is only checked when one
// of its operations is invoked.
type Ref struct {
	courier.Ref[Unit]
}

// NewRef creates a reference to the Destination instance at the given address.
func NewRef(address courier.Address) Ref {
	return Ref{courier.NewRef[Unit](address)}
}

// Flip invokes flip on the referenced instance.
func (r Ref) Flip(ctx courier.RunContext) error {
	_, err := r.Invoke(ctx, "flip")
	return err
}

// Get invokes get on the referenced instance.
func (r Ref) Get(ctx courier.RunContext) (bool, error) {
	results, err := r.Invoke(ctx, "get")
	if err != nil {
		return false, err
	}
	value, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("%w: get returned %T", courier.ErrInvalidOutput, results[0])
	}
	return value, nil
}
