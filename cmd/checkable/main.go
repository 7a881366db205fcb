package main

import (
	"checkable/internal/cli"
)

func main() {
	cli.Execute()
}
