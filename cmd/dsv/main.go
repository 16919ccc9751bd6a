package main

import "github.com/splurge/dsv/cmd/dsv/cmd"

func main() {
	cmd.Execute()
}
