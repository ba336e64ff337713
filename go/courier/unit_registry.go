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

	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/maps"
)

// This file provides a registry for unit code in Courier.
//
// Deployed unit instances refer to their code by a code hash. The host
// resolves such hashes using this registry. For a unit type to be deployable
// its code needs to be registered. Typically, this registration is part of
// the init code of the package providing the unit. Thus, by including the
// unit package, the unit type becomes available to the host.

// CodeHash computes the code hash under which unit code registered with the
// given name (case-insensitive) is stored in the world state.
func CodeHash(name string) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(strings.ToLower(name)))
	var hash Hash
	hasher.Sum(hash[0:0])
	return hash
}

// RegisterUnit registers the code of a unit type under the given name. The
// name is not case-sensitive. An error is returned if the unit is nil or the
// name is already taken.
func RegisterUnit(name string, unit Unit) error {
	key := strings.ToLower(name)
	if unit == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-unit using `%s`", key)
	}
	unitRegistryLock.Lock()
	defer unitRegistryLock.Unlock()
	hash := CodeHash(key)
	if _, found := unitRegistry[hash]; found {
		return fmt.Errorf("invalid initialization: multiple units registered for `%s`", key)
	}
	unitRegistry[hash] = registeredUnit{name: key, unit: unit}
	return nil
}

// GetUnit performs a lookup for the given code hash in the registry. The
// result is nil if no unit was registered for the hash.
func GetUnit(hash Hash) Unit {
	unitRegistryLock.Lock()
	defer unitRegistryLock.Unlock()
	return unitRegistry[hash].unit
}

// GetUnitByName performs a lookup for the given name (case-insensitive) in
// the registry. The result is nil if no unit was registered under the name.
func GetUnitByName(name string) Unit {
	return GetUnit(CodeHash(name))
}

// GetUnitName returns the name under which the code with the given hash was
// registered.
func GetUnitName(hash Hash) (string, bool) {
	unitRegistryLock.Lock()
	defer unitRegistryLock.Unlock()
	entry, found := unitRegistry[hash]
	return entry.name, found
}

// GetAllRegisteredUnits obtains all registered unit codes indexed by name.
func GetAllRegisteredUnits() map[string]Unit {
	unitRegistryLock.Lock()
	defer unitRegistryLock.Unlock()
	res := make(map[string]Unit, len(unitRegistry))
	for _, entry := range maps.Values(unitRegistry) {
		res[entry.name] = entry.unit
	}
	return res
}

type registeredUnit struct {
	name string
	unit Unit
}

// unitRegistry is a global registry for unit code indexed by code hash.
var unitRegistry = map[Hash]registeredUnit{}

// unitRegistryLock to protect access to the registry.
var unitRegistryLock sync.Mutex
