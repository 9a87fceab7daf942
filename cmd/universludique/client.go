package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/pmourey/UniversLudique/internal/tui"
)

type ClientCmd struct {
	URL  string `help:"Server websocket URL" default:"ws://localhost:8080/ws"`
	Name string `short:"n" help:"Display name" default:""`
}

func (c *ClientCmd) Run(logger *log.Logger) error {
	name := c.Name
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "guest"
	}

	// The TUI owns the terminal, keep log noise out of it
	logFile, err := os.OpenFile("universludique-client.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open client log: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger.SetOutput(logFile)

	return tui.Run(c.URL, name, logger)
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host, port, nil
}
