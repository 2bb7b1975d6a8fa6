package main

import (
	"github.com/annettefo/prefect/cmd/flowctl/cmd"
	"github.com/annettefo/prefect/internal/common"
)

func main() {
	common.ConfigureCommandLineLogging()
	cmd.Execute()
}
