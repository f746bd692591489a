package main

import "github.com/ValentinKolb/fsSync/cmd"

func main() {
	cmd.Execute()
}
