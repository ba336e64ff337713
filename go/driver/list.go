// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var ListCmd = cli.Command{
	Action: doList,
	Name:   "list",
	Usage:  "List all registered units and their operations",
}

func doList(context *cli.Context) error {
	units := courier.GetAllRegisteredUnits()
	names := maps.Keys(units)
	sort.Strings(names)

	out := context.App.Writer
	for _, name := range names {
		contract := units[name].ABI()
		fmt.Fprintf(out, "%s (code %v)\n", name, courier.CodeHash(name))
		fmt.Fprintf(out, "  %v\n", contract.Constructor)

		methods := maps.Keys(contract.Methods)
		sort.Strings(methods)
		for _, method := range methods {
			fmt.Fprintf(out, "  %v\n", contract.Methods[method])
		}
	}
	return nil
}
