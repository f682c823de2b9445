package main

import "github.com/deploymenttheory/go-dc42/cmd"

func main() {
	cmd.Execute()
}
