package main

import "github.com/example/gym-booker/cmd"

func main() {
	cmd.Execute()
}
