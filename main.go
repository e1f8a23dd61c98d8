package main

import "github.com/Alijeyrad/simorq_portal/cmd"

func main() {
	cmd.Execute()
}
