package main

import "github.com/oshokin/particle-injector/cmd/pulse-history/cmd"

func main() {
	cmd.Execute()
}
