package main

import (
	"os"

	"github.com/leefowlercu/cymirs/cmd"
	"github.com/leefowlercu/cymirs/internal/cmdutil"
)

func main() {
	os.Exit(cmdutil.ExitCode(cmd.Execute()))
}
