package main

import (
	"github.com/charliek/webhook/internal/cli"
)

func main() {
	cli.Execute()
}
