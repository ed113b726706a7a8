package network

import (
	"crypto/tls"
	"time"

	"github.com/lixenwraith/invaders/parameter"
)

// Config holds the transport settings shared by coordinator and workers
type Config struct {
	// Address to bind (coordinator) or connect to (worker)
	Address string

	// TLS configuration (nil = plaintext)
	TLS *tls.Config

	// Grid shape; both sides must agree during the handshake
	Rows int
	Cols int

	// Timing
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	CollectTimeout   time.Duration // 0 waits forever

	// Outbound frames queued per peer
	SendQueueSize int
}

// DefaultConfig returns plaintext settings for a rows x cols grid
func DefaultConfig(addr string, rows, cols int) *Config {
	return &Config{
		Address:          addr,
		Rows:             rows,
		Cols:             cols,
		ConnectTimeout:   parameter.NetworkHandshakeTimeout,
		HandshakeTimeout: parameter.NetworkHandshakeTimeout,
		CollectTimeout:   parameter.CollectTimeout,
		SendQueueSize:    parameter.NetworkQueueSize,
	}
}

// Workers is the number of entity connections the coordinator waits for
func (c *Config) Workers() int {
	return c.Rows * c.Cols
}
