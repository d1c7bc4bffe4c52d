// Command carrierscope is the CLI entry point.
package main

import "carrierscope/cmd"

func main() {
	cmd.Execute()
}
