package config

import (
	"encoding/base64"
	"errors"
)

type Enclave struct {
	URL            string     `toml:"url" json:"url"`
	PublicKey      string     `toml:"publicKey" json:"publicKey"`           // enclave key used when the caller has none
	MultiTenancy   bool       `toml:"multiTenancy" json:"multiTenancy"`     // callers may only send as their own key
	UpcheckOnStart bool       `toml:"upcheckOnStart" json:"upcheckOnStart"` // wait for the enclave before serving
	TLSConfig      *ClientTLS `toml:"tlsConfig" json:"tlsConfig"`
}

func (c Enclave) IsValid() error {
	if c.URL == "" {
		return newFieldErr("url", isEmptyErr)
	}
	if err := isValidUrl(c.URL); err != nil {
		return newFieldErr("url", err)
	}
	if c.PublicKey == "" {
		return newFieldErr("publicKey", isEmptyErr)
	}
	if b, err := base64.StdEncoding.DecodeString(c.PublicKey); err != nil || len(b) != 32 {
		return newFieldErr("publicKey", errors.New("must be a base64 encoded 32 byte key"))
	}
	if c.TLSConfig != nil {
		if err := c.TLSConfig.IsValid(); err != nil {
			return newFieldErr("tlsConfig", err)
		}
	}
	return nil
}
