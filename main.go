package main

import "github.com/Mohsinsiddi/krypton/cmd"

func main() {
	cmd.Execute()
}
