package main

import "github.com/harrydhillon-synapse/cosmosToDb/internal/cli"

func main() {
	cli.Execute()
}
