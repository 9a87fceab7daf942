package main

import (
	"github.com/charmbracelet/log"

	"github.com/pmourey/UniversLudique/cmd/universludique/shared"
	"github.com/pmourey/UniversLudique/internal/server"
)

type ServeCmd struct {
	Config string `short:"c" help:"Path to HCL configuration file" default:"universludique.hcl"`
	Addr   string `help:"Listen address override (host:port)"`
	Seed   int64  `help:"Shuffle seed for reproducible deals (0 seeds from the clock)"`
}

func (c *ServeCmd) Run(logger *log.Logger) error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		host, port, err := splitHostPort(c.Addr)
		if err != nil {
			return err
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := shared.SignalContext()
	defer cancel()

	srv := server.NewServer(cfg, logger, c.Seed)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		return srv.Stop()
	}
}
