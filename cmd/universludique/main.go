package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/pmourey/UniversLudique/cmd/universludique/shared"
)

type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"info"`

	Serve  ServeCmd  `cmd:"" help:"Run the game server"`
	Client ClientCmd `cmd:"" help:"Connect to a server with the terminal client"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("universludique"),
		kong.Description("Multiplayer Texas Hold'em over websockets"),
		kong.UsageOnError(),
	)

	logger := shared.NewLogger(cli.LogLevel, os.Stderr)
	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
