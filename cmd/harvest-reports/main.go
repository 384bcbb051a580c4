package main

import "github.com/pfrederiksen/harvest-reports/internal/cli"

func main() {
	cli.Execute()
}
