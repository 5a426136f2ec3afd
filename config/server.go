package config

import (
	"errors"
	"strings"
)

type Server struct {
	RPCAddr           string     `toml:"rpcAddress" json:"rpcAddress"`
	RPCCorsList       []string   `toml:"rpcCorsList" json:"rpcCorsList"`
	RPCVHosts         []string   `toml:"rpcvHosts" json:"rpcvHosts"`
	RequestsPerMinute int        `toml:"requestsPerMinute" json:"requestsPerMinute"` // per client IP, 0 disables the limit
	TLSConfig         *ServerTLS `toml:"tlsConfig" json:"tlsConfig"`
	Auth              *Auth      `toml:"auth" json:"auth"`
}

func (c Server) IsValid() error {
	if c.RPCAddr == "" {
		return newFieldErr("rpcAddress", isEmptyErr)
	}
	if err := isValidUrl(c.RPCAddr); err != nil {
		return newFieldErr("rpcAddress", err)
	}
	if c.RequestsPerMinute < 0 {
		return newFieldErr("requestsPerMinute", errors.New("must be >= 0"))
	}
	if c.TLSConfig != nil {
		if err := c.TLSConfig.IsValid(); err != nil {
			return newFieldErr("tlsConfig", err)
		}
	}
	if c.Auth != nil {
		if err := c.Auth.IsValid(); err != nil {
			return newFieldErr("auth", err)
		}
	}
	return nil
}

// ListenAddr is RPCAddr without its scheme, as net/http expects.
func (c Server) ListenAddr() string {
	addr := c.RPCAddr
	if i := strings.Index(addr, "://"); i >= 0 {
		addr = addr[i+3:]
	}
	return strings.TrimSuffix(addr, "/")
}

// Auth enables JWT authentication of RPC callers. The token's
// privacyPublicKey claim selects the enclave key the caller acts as.
type Auth struct {
	Algorithm string `toml:"algorithm" json:"algorithm"` // HS256, HS384 or HS512
	Secret    string `toml:"secret" json:"secret"`
}

func (c Auth) IsValid() error {
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	case "":
		return newFieldErr("algorithm", isEmptyErr)
	default:
		return newFieldErr("algorithm", errors.New("must be HS256, HS384 or HS512"))
	}
	if c.Secret == "" {
		return newFieldErr("secret", isEmptyErr)
	}
	return nil
}
