package main

import "github.com/markblundeberg/miningsim/app/tooling/simcli/cmd"

func main() {
	cmd.Execute()
}
