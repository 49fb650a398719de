package main

import "github.com/jsphweid/midiscribe/cmd"

func main() {
	cmd.Execute()
}
