package main

import (
	"github.com/Kenkeni-ZJU/metabolisHMM/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
