package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

type ServerTLS struct {
	KeyFile          string `toml:"keyFile" json:"keyFile"`
	CertFile         string `toml:"certificateFile" json:"certificateFile"`
	ClientCaCertFile string `toml:"clientCaCertificateFile" json:"clientCaCertificateFile"`
	TlsCfg           *tls.Config
}

func (c *ServerTLS) SetTLSConfig() error {
	var err error
	c.TlsCfg, err = c.TLSConfig()
	return err
}

// IsValid checks the fields and loads the key material into TlsCfg.
func (c *ServerTLS) IsValid() error {
	if c.CertFile == "" {
		return newFieldErr("certificateFile", isEmptyErr)
	}
	if c.KeyFile == "" {
		return newFieldErr("keyFile", isEmptyErr)
	}
	return c.SetTLSConfig()
}

// TLSConfig requires TLS1.2 or above. Client certificates are required and
// verified when a client CA is configured.
func (c *ServerTLS) TLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, err
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if c.ClientCaCertFile != "" {
		if tlsConfig.ClientCAs, err = loadCertPool(c.ClientCaCertFile); err != nil {
			return nil, err
		}
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsConfig, nil
}

type ClientTLS struct {
	CertFile           string `toml:"certificateFile" json:"certificateFile"`
	KeyFile            string `toml:"keyFile" json:"keyFile"`
	CACertFile         string `toml:"caCertificateFile" json:"caCertificateFile"`
	InsecureSkipVerify bool   `toml:"insecureSkipVerify" json:"insecureSkipVerify"`
	TlsCfg             *tls.Config
}

func (c *ClientTLS) SetTLSConfig() error {
	var err error
	c.TlsCfg, err = c.TLSConfig()
	return err
}

func (c *ClientTLS) IsValid() error {
	if c.CACertFile == "" && !c.InsecureSkipVerify {
		return newFieldErr("caCertificateFile", isEmptyErr)
	}
	if c.CertFile != "" && c.KeyFile == "" {
		return newFieldErr("keyFile", errors.New("must be set as certificateFile is set"))
	}
	if c.KeyFile != "" && c.CertFile == "" {
		return newFieldErr("certificateFile", errors.New("must be set as keyFile is set"))
	}
	return c.SetTLSConfig()
}

// TLSConfig builds the client side config: optional client certificate for
// mutual TLS and the CA the enclave certificate is checked against.
func (c *ClientTLS) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	if !c.InsecureSkipVerify && c.CACertFile != "" {
		pool, err := loadCertPool(c.CACertFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}
	return tlsConfig, nil
}

// loadCertPool adds the PEM certificates in file to the system pool.
func loadCertPool(file string) (*x509.CertPool, error) {
	caPem, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(caPem) {
		return nil, errors.New("no certificates found in " + file)
	}
	return pool, nil
}
