// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/wildframe/folio/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
