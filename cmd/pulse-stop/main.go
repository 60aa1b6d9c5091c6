package main

import "github.com/oshokin/particle-injector/cmd/pulse-stop/cmd"

func main() {
	cmd.Execute()
}
