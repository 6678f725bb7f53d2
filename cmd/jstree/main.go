package main

import "github.com/specvital/jstree/internal/cli"

func main() {
	cli.Execute()
}
