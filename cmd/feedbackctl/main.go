package main

import (
	"fmt"
	"os"

	"github.com/NomadCrew/feedback-backend/internal/cli"
	"github.com/NomadCrew/feedback-backend/logger"
)

func main() {
	err := cli.NewRootCommand().Execute()
	_ = logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
