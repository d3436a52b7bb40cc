// Package main is the entry point of the codemodder CLI.
package main

import "github.com/mouse-blink/codemodder/cmd"

func main() {
	cmd.Execute()
}
