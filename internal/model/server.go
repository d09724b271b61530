package model

import (
	"context"
	"net"
)

// SecurityLayer opens listeners, optionally wrapped in TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a long-running network server managed by main.
type Server interface {
	Name() string
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
