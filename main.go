package main

import "ratnav/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
