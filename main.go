package main

import "github.com/agorabot/agora/cmd"

func main() {
	cmd.Execute()
}
