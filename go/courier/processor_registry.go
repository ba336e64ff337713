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
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// This file provides a registry for Processor implementations in Courier.
// Like unit code, processors register themselves from the init code of the
// package providing them.

// ProcessorFactory is the type of a function that creates a new Processor
// using a processor specific configuration. A nil configuration selects
// the implementation's defaults.
type ProcessorFactory func(config any) (Processor, error)

// NewProcessor performs a lookup for the given name (case-insensitive) in
// the registry and creates a new Processor using the given configuration.
// An error is returned if no factory was registered under the given name.
func NewProcessor(name string, config any) (Processor, error) {
	factory := GetProcessorFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("processor not found: %s", name)
	}
	return factory(config)
}

// GetProcessor is like NewProcessor but returns nil if the processor is
// unknown or could not be created.
func GetProcessor(name string, config any) Processor {
	res, err := NewProcessor(name, config)
	if err != nil {
		return nil
	}
	return res
}

// GetProcessorFactory performs a lookup for the given name (case-insensitive)
// in the registry. The result is nil if no factory was registered under the
// given name.
func GetProcessorFactory(name string) ProcessorFactory {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return processorRegistry[strings.ToLower(name)]
}

// GetAllRegisteredProcessorFactories obtains all registered implementations.
func GetAllRegisteredProcessorFactories() map[string]ProcessorFactory {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return maps.Clone(processorRegistry)
}

// RegisterProcessorFactory registers a new Processor implementation to be
// exported for general use in the binary. The name is not case-sensitive,
// and a panic is triggered if a factory was bound to the same name before,
// or the factory is nil. This function is mainly intended to be used by
// package initialization code.
func RegisterProcessorFactory(name string, factory ProcessorFactory) {
	key := strings.ToLower(name)
	if factory == nil {
		panic(fmt.Sprintf("invalid initialization: cannot register nil-factory using `%s`", key))
	}
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	if _, found := processorRegistry[key]; found {
		panic(fmt.Sprintf("invalid initialization: multiple factories registered for `%s`", key))
	}
	processorRegistry[key] = factory
}

// processorRegistry is a global registry for Processor factories.
var processorRegistry = map[string]ProcessorFactory{}

// processorRegistryLock to protect access to the registry.
var processorRegistryLock sync.Mutex
