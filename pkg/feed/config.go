package feed

import (
	"fmt"
	"time"
)

// Config holds WebSocket feed configuration
type Config struct {
	URL              string        `json:"url" validate:"required,url"`
	ConnectTimeout   time.Duration `json:"connect_timeout"`
	HandshakeTimeout time.Duration `json:"handshake_timeout"`

	ReadBufferSize  int   `json:"read_buffer_size"`
	WriteBufferSize int   `json:"write_buffer_size"`
	MaxMessageSize  int64 `json:"max_message_size"`

	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	PingInterval time.Duration `json:"ping_interval"`

	ReconnectInitialDelay time.Duration `json:"reconnect_initial_delay"`
	ReconnectMaxDelay     time.Duration `json:"reconnect_max_delay"`
	MaxReconnects         int           `json:"max_reconnects"`

	MessageBuffer int `json:"message_buffer"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:        10 * time.Second,
		HandshakeTimeout:      45 * time.Second,
		ReadBufferSize:        4096,
		WriteBufferSize:       4096,
		MaxMessageSize:        1024 * 1024, // 1MB
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          10 * time.Second,
		PingInterval:          30 * time.Second,
		ReconnectInitialDelay: 500 * time.Millisecond,
		ReconnectMaxDelay:     30 * time.Second,
		MaxReconnects:         10,
		MessageBuffer:         256,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("URL is required")
	}

	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("read buffer size must be positive")
	}

	if c.WriteBufferSize <= 0 {
		return fmt.Errorf("write buffer size must be positive")
	}

	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("max message size must be positive")
	}

	if c.MaxReconnects <= 0 {
		return fmt.Errorf("max reconnects must be positive")
	}

	if c.MessageBuffer <= 0 {
		return fmt.Errorf("message buffer must be positive")
	}

	return nil
}
