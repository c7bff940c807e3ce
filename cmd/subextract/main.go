package main

import "github.com/forPelevin/subextract/internal/cli"

func main() {
	cli.Main()
}
