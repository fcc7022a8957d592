package geyser

import (
	"time"

	"github.com/pkg/errors"
)

// SourceConfig describes one upstream geyser endpoint. Several sources with
// the same commitment form a redundant set that the multiplexer merges.
type SourceConfig struct {
	// Name labels the source in logs and metrics.
	Name string
	// Endpoint is the host:port of the geyser gRPC service.
	Endpoint string
	// XToken is sent as the x-token request header when non-empty.
	XToken string
	// InsecureConnection disables TLS; local validators only.
	InsecureConnection bool

	// ConnectTimeout bounds the initial dial. Zero means DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// ReceiveTimeout bounds the gap between consecutive stream messages.
	// Zero disables the check.
	ReceiveTimeout time.Duration
}

const DefaultConnectTimeout = 15 * time.Second

func (c SourceConfig) Validate() error {
	if c.Name == "" {
		return errors.New("source config: empty name")
	}
	if c.Endpoint == "" {
		return errors.Errorf("source config %q: empty endpoint", c.Name)
	}
	return nil
}

func (c SourceConfig) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return DefaultConnectTimeout
}

// AccountFilter selects account updates by account key and/or owner program.
// Keys are base58 strings, matching the wire filter format.
type AccountFilter struct {
	Accounts []string
	Owners   []string
}

type AccountFilters []AccountFilter

func (f AccountFilters) IsEmpty() bool {
	for _, filter := range f {
		if len(filter.Accounts) > 0 || len(filter.Owners) > 0 {
			return false
		}
	}
	return true
}
