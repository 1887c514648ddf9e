package main

import "github.com/Alijeyrad/heimdall/cmd"

func main() {
	cmd.Execute()
}
