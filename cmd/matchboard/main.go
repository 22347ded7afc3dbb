package main

import "github.com/mcoot/matchboard/internal/cli"

func main() {
	cli.Execute()
}
