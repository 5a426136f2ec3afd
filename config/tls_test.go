package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/naoina/toml"
	"github.com/stretchr/testify/require"
)

// writeCertificate writes a self-signed certificate and its key to dir.
func writeCertificate(t *testing.T, dir string) (certFile, keyFile string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "localhost"},
		DNSNames:              []string{"localhost"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0600))
	return certFile, keyFile
}

func minimumValidServerTLS(t *testing.T) ServerTLS {
	certFile, keyFile := writeCertificate(t, t.TempDir())
	return ServerTLS{
		KeyFile:          keyFile,
		CertFile:         certFile,
		ClientCaCertFile: "",
	}
}

func minimumValidClientTLS(t *testing.T) ClientTLS {
	certFile, _ := writeCertificate(t, t.TempDir())
	return ClientTLS{
		CACertFile:         certFile,
		KeyFile:            "",
		CertFile:           "",
		InsecureSkipVerify: false,
	}
}

func TestServerTLS_Unmarshal(t *testing.T) {
	tests := []struct {
		name, configTemplate string
	}{
		{
			name: "json",
			configTemplate: `
{
	"%v": "/path/to/key.pem",
	"%v": "/path/to/cert.pem",
	"%v": "/path/to/ca.pem"
}`,
		},
		{
			name: "toml",
			configTemplate: `
%v = "/path/to/key.pem"
%v = "/path/to/cert.pem"
%v = "/path/to/ca.pem"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := fmt.Sprintf(tt.configTemplate, keyFileField, certificateFileField, clientCaCertificateField)

			want := ServerTLS{
				KeyFile:          "/path/to/key.pem",
				CertFile:         "/path/to/cert.pem",
				ClientCaCertFile: "/path/to/ca.pem",
			}

			var (
				got ServerTLS
				err error
			)

			if tt.name == "json" {
				err = json.Unmarshal([]byte(conf), &got)
			} else if tt.name == "toml" {
				err = toml.Unmarshal([]byte(conf), &got)
			}

			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestClientTLS_Unmarshal(t *testing.T) {
	tests := []struct {
		name, configTemplate string
	}{
		{
			name: "json",
			configTemplate: `
{
	"%v": "/path/to/key.pem",
	"%v": "/path/to/cert.pem",
	"%v": "/path/to/ca.pem",
	"%v": true
}`,
		},
		{
			name: "toml",
			configTemplate: `
%v = "/path/to/key.pem"
%v = "/path/to/cert.pem"
%v = "/path/to/ca.pem"
%v = true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			conf := fmt.Sprintf(tt.configTemplate, keyFileField, certificateFileField, caCertificateFileField, insecureSkipVerifyField)

			want := ClientTLS{
				KeyFile:            "/path/to/key.pem",
				CertFile:           "/path/to/cert.pem",
				CACertFile:         "/path/to/ca.pem",
				InsecureSkipVerify: true,
			}

			var (
				got ClientTLS
				err error
			)

			if tt.name == "json" {
				err = json.Unmarshal([]byte(conf), &got)
			} else if tt.name == "toml" {
				err = toml.Unmarshal([]byte(conf), &got)
			}

			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestServerTLS_IsValid_MinimumValid(t *testing.T) {
	c := minimumValidServerTLS(t)

	err := c.IsValid()

	require.NoError(t, err)
}

func TestServerTLS_IsValid_CertificateFile(t *testing.T) {
	c := minimumValidServerTLS(t)
	c.CertFile = ""

	err := c.IsValid()

	require.IsType(t, &fieldErr{}, err)
	require.EqualError(t, err, certificateFileField+" is empty")
}

func TestServerTLS_IsValid_KeyFile(t *testing.T) {
	c := minimumValidServerTLS(t)
	c.KeyFile = ""

	err := c.IsValid()

	require.IsType(t, &fieldErr{}, err)
	require.EqualError(t, err, keyFileField+" is empty")
}

func TestServerTLS_Load(t *testing.T) {
	c := minimumValidServerTLS(t)
	c.ClientCaCertFile = c.CertFile

	require.NoError(t, c.IsValid())

	require.NotNil(t, c.TlsCfg)
	require.Len(t, c.TlsCfg.Certificates, 1)
	require.Equal(t, uint16(tls.VersionTLS12), c.TlsCfg.MinVersion)
	require.Equal(t, tls.RequireAndVerifyClientCert, c.TlsCfg.ClientAuth)
	require.NotNil(t, c.TlsCfg.ClientCAs)
}

func TestServerTLS_Load_MissingFile(t *testing.T) {
	c := minimumValidServerTLS(t)
	c.KeyFile = filepath.Join(t.TempDir(), "missing.pem")

	require.Error(t, c.IsValid())
}

func TestClientTLS_IsValid_CaCertificateFile(t *testing.T) {
	c := minimumValidClientTLS(t)
	c.CACertFile = ""

	err := c.IsValid()

	require.IsType(t, &fieldErr{}, err)
	require.EqualError(t, err, caCertificateFileField+" is empty")
}

func TestClientTLS_IsValid_CertificateAndKeyFile(t *testing.T) {
	tests := []struct {
		name            string
		setCert, setKey bool
		wantErrMsg      string
	}{
		{
			name:       "both set",
			setCert:    true,
			setKey:     true,
			wantErrMsg: "",
		},
		{
			name:       "only keyFile set",
			setKey:     true,
			wantErrMsg: fmt.Sprintf("%v must be set as %v is set", certificateFileField, keyFileField),
		},
		{
			name:       "only certificateFile set",
			setCert:    true,
			wantErrMsg: fmt.Sprintf("%v must be set as %v is set", keyFileField, certificateFileField),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := minimumValidClientTLS(t)
			certFile, keyFile := writeCertificate(t, t.TempDir())
			if tt.setCert {
				c.CertFile = certFile
			}
			if tt.setKey {
				c.KeyFile = keyFile
			}

			err := c.IsValid()

			if tt.wantErrMsg == "" {
				require.NoError(t, err)
			} else {
				require.IsType(t, &fieldErr{}, err)
				require.EqualError(t, err, tt.wantErrMsg)
			}
		})
	}
}

func TestClientTLS_Load(t *testing.T) {
	c := minimumValidClientTLS(t)
	c.CertFile, c.KeyFile = writeCertificate(t, t.TempDir())

	require.NoError(t, c.IsValid())

	require.NotNil(t, c.TlsCfg.RootCAs)
	require.Len(t, c.TlsCfg.Certificates, 1)
	require.False(t, c.TlsCfg.InsecureSkipVerify)
}

func TestClientTLS_InsecureSkipVerifyNeedsNoCA(t *testing.T) {
	c := ClientTLS{InsecureSkipVerify: true}

	require.NoError(t, c.IsValid())

	require.True(t, c.TlsCfg.InsecureSkipVerify)
	require.Nil(t, c.TlsCfg.RootCAs)
}

func TestClientTLS_Load_NotPEM(t *testing.T) {
	f := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(f, []byte("not a certificate"), 0600))
	c := ClientTLS{CACertFile: f}

	require.EqualError(t, c.IsValid(), "no certificates found in "+f)
}
