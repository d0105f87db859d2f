package main

import "github.com/libserial/serial/cmd"

func main() {
	cmd.Execute()
}
