package main

import "github.com/travellive/tourquery/internal/cli"

func main() {
	cli.Execute()
}
