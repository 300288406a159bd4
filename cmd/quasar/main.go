package main

import (
	"github.com/withgalaxy/quasar/pkg/cli"
)

func main() {
	cli.Execute()
}
