package main

import "github.com/fakeyudi/autopilot/cmd"

func main() {
	cmd.Execute()
}
