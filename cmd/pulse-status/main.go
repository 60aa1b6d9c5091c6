package main

import "github.com/oshokin/particle-injector/cmd/pulse-status/cmd"

func main() {
	cmd.Execute()
}
