package main

import (
	"github.com/Cellebyte/mpsync/cmd"
	"github.com/Cellebyte/mpsync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
