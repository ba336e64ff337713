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
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
	"go.uber.org/zap"
)

const (
	DefaultMaxCallDepth    = 1024
	DefaultCallGas         = 700
	DefaultStorageReadGas  = 800
	DefaultStorageWriteGas = 5_000
	DefaultCreateGas       = 32_000
	DefaultCodeCacheSize   = 256
)

// Config contains the set of configuration options of the host processor.
// Zero values are replaced by defaults when a processor is created.
type Config struct {
	// MaxCallDepth is the maximum nesting depth of dispatched calls. The
	// invocation started by a transaction runs at depth 0.
	MaxCallDepth int
	// CallGas is charged to the calling frame for every dispatched call.
	CallGas courier.Gas
	// StorageReadGas is charged for every storage read of a unit.
	StorageReadGas courier.Gas
	// StorageWriteGas is charged for every storage update of a unit.
	StorageWriteGas courier.Gas
	// CreateGas is charged for the construction of a unit.
	CreateGas courier.Gas
	// CodeCacheSize is the number of resolved unit codes kept in memory. If
	// negative, no cache is used.
	CodeCacheSize int
	// Diagnostics receives the diagnostic messages emitted by units. If nil,
	// diagnostics are dropped.
	Diagnostics courier.DiagnosticSink
	// Logger is used for reporting the outcome of transactions. If nil, no
	// log output is produced.
	Logger *zap.SugaredLogger
}

// DefaultConfig returns the configuration used if no options are provided.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = DefaultMaxCallDepth
	}
	if c.CallGas == 0 {
		c.CallGas = DefaultCallGas
	}
	if c.StorageReadGas == 0 {
		c.StorageReadGas = DefaultStorageReadGas
	}
	if c.StorageWriteGas == 0 {
		c.StorageWriteGas = DefaultStorageWriteGas
	}
	if c.CreateGas == 0 {
		c.CreateGas = DefaultCreateGas
	}
	if c.CodeCacheSize == 0 {
		c.CodeCacheSize = DefaultCodeCacheSize
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	return c
}

func (c Config) validate() error {
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("invalid max call depth: %d", c.MaxCallDepth)
	}
	for name, gas := range map[string]courier.Gas{
		"call":          c.CallGas,
		"storage read":  c.StorageReadGas,
		"storage write": c.StorageWriteGas,
		"create":        c.CreateGas,
	} {
		if gas < 0 {
			return fmt.Errorf("invalid %s gas cost: %d", name, gas)
		}
	}
	return nil
}
