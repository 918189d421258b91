// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/doclog/doclog/cmd/doclog"

func main() {
	cmd.Execute()
}
