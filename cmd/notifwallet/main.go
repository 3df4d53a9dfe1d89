package main

import "github.com/wiyan17/Notifwallet-bot/internal/cli"

func main() {
	cli.Execute()
}
