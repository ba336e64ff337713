// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package courier is the public interface of the Courier project. It defines
// the types exchanged between deployed units and the execution host: unit
// addresses, per-call contexts, typed remote references, the host shim a
// running unit consumes, and the processor interface executing transactions
// as synchronous call chains.
//
// Unit implementations and processors register themselves in the registries
// of this package from their init code. Thus, by importing an implementation
// package, it becomes available to all client code.
package courier
