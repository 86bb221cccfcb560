package main

import "github.com/alde/flatpdf/cmd"

func main() {
	cmd.Execute()
}
