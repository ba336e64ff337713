// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package host implements a transaction processor dispatching calls between
// the units registered in the courier unit registry.
package host

import (
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	TxGas             = 21_000
	TxGasUnitCreation = 53_000
	TxDataNonZeroGas  = 16
	TxDataZeroGas     = 4
)

func init() {
	courier.RegisterProcessorFactory("host", newProcessorFromConfig)
}

func newProcessorFromConfig(config any) (courier.Processor, error) {
	switch config := config.(type) {
	case nil:
		return NewProcessor(Config{})
	case Config:
		return NewProcessor(config)
	case *Config:
		if config == nil {
			return NewProcessor(Config{})
		}
		return NewProcessor(*config)
	}
	return nil, fmt.Errorf("unsupported host processor configuration of type %T", config)
}

// Processor is a courier.Processor running every transaction as a single
// atomic call chain. A Processor can be shared by concurrent transactions
// operating on distinct transaction contexts.
type Processor struct {
	config      Config
	codeCache   *lru.Cache[courier.Hash, courier.Unit]
	resolveCode func(courier.Hash) courier.Unit
}

// NewProcessor creates a new host processor with the given configuration.
func NewProcessor(config Config) (*Processor, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	var cache *lru.Cache[courier.Hash, courier.Unit]
	if config.CodeCacheSize > 0 {
		var err error
		cache, err = lru.New[courier.Hash, courier.Unit](config.CodeCacheSize)
		if err != nil {
			return nil, err
		}
	}
	return &Processor{
		config:      config,
		codeCache:   cache,
		resolveCode: courier.GetUnit,
	}, nil
}

// Config returns the effective configuration of the processor.
func (p *Processor) Config() Config {
	return p.config
}

func (p *Processor) Run(
	transaction courier.Transaction,
	context courier.TransactionContext,
) (courier.Receipt, error) {
	errorReceipt := func(err error) courier.Receipt {
		return courier.Receipt{
			Success: false,
			GasUsed: transaction.GasLimit,
			Err:     err,
		}
	}
	gas := transaction.GasLimit

	intrinsicGas := setupGasBilling(transaction)
	if gas < intrinsicGas {
		return errorReceipt(fmt.Errorf("%w: %d < %d", courier.ErrIntrinsicGas, gas, intrinsicGas)), nil
	}
	gas -= intrinsicGas

	if err := handleNonce(transaction, context); err != nil {
		return errorReceipt(err), nil
	}

	// The nonce update survives failures of the call chain.
	snapshot := context.CreateSnapshot()
	origin := newOriginFrame(p, context, transaction.Sender, gas)

	var output courier.Data
	var created *courier.Address
	var err error
	if transaction.Recipient == nil {
		var address courier.Address
		address, output, err = create(origin, transaction)
		if err == nil {
			created = &address
		}
	} else {
		output, err = call(origin, transaction)
	}

	gasUsed := transaction.GasLimit - origin.gasLeft
	if err != nil {
		context.RestoreSnapshot(snapshot)
		p.config.Logger.Debugw("transaction failed",
			"sender", transaction.Sender,
			"nonce", transaction.Nonce,
			"gasUsed", gasUsed,
			"error", err,
		)
		return courier.Receipt{
			Success: false,
			GasUsed: gasUsed,
			Err:     err,
		}, nil
	}

	p.config.Logger.Debugw("transaction succeeded",
		"sender", transaction.Sender,
		"nonce", transaction.Nonce,
		"gasUsed", gasUsed,
	)
	return courier.Receipt{
		Success:         true,
		Output:          output,
		ContractAddress: created,
		GasUsed:         gasUsed,
	}, nil
}

// resolve returns the unit implementing the code with the given hash or nil
// if there is no such unit.
func (p *Processor) resolve(codeHash courier.Hash) courier.Unit {
	if p.codeCache != nil {
		if unit, found := p.codeCache.Get(codeHash); found {
			return unit
		}
	}
	unit := p.resolveCode(codeHash)
	if unit != nil && p.codeCache != nil {
		p.codeCache.Add(codeHash, unit)
	}
	return unit
}

// IntrinsicGas returns the gas charged for a transaction before any unit code
// is executed.
func IntrinsicGas(transaction courier.Transaction) courier.Gas {
	return setupGasBilling(transaction)
}

func setupGasBilling(transaction courier.Transaction) courier.Gas {
	var gas courier.Gas
	if transaction.Recipient == nil {
		gas = TxGasUnitCreation
	} else {
		gas = TxGas
	}

	if len(transaction.Input) > 0 {
		nonZeroBytes := courier.Gas(0)
		for _, inputByte := range transaction.Input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := courier.Gas(len(transaction.Input)) - nonZeroBytes
		gas += zeroBytes * TxDataZeroGas
		gas += nonZeroBytes * TxDataNonZeroGas
	}
	return gas
}

func handleNonce(transaction courier.Transaction, context courier.TransactionContext) error {
	stateNonce := context.GetNonce(transaction.Sender)
	messageNonce := transaction.Nonce
	if messageNonce != stateNonce {
		return fmt.Errorf("%w: %v != %v", courier.ErrNonceMismatch, messageNonce, stateNonce)
	}
	context.SetNonce(transaction.Sender, stateNonce+1)
	return nil
}
