package main

import "github.com/Digital-Shane/media-renamer/internal/cmd"

func main() {
	cmd.Execute()
}
