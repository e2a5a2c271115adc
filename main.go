package main

import "obetrack/cmd"

func main() {
	cmd.Execute()
}
