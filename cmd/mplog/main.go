package main

import (
	"github.com/charliek/mplog/internal/cli"
)

func main() {
	cli.Execute()
}
