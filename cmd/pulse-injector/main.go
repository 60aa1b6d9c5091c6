package main

import "github.com/oshokin/particle-injector/cmd/pulse-injector/cmd"

func main() {
	cmd.Execute()
}
