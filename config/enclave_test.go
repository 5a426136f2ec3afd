package config

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/naoina/toml"
	"github.com/stretchr/testify/require"
)

func minimumValidEnclave() Enclave {
	return Enclave{
		URL:       "http://localhost:9001",
		PublicKey: "A1aVtMxLCUHmBVHXoZzzBgPbW/wj5axDpW9X8l91SGo=",
	}
}

func TestEnclave_Unmarshal(t *testing.T) {
	tests := []struct {
		name, configTemplate string
	}{
		{
			name: "json",
			configTemplate: `
{
	"%v": "https://localhost:9001",
	"%v": "A1aVtMxLCUHmBVHXoZzzBgPbW/wj5axDpW9X8l91SGo=",
	"%v": true,
	"%v": {
		"%v": true
	}
}`,
		},
		{
			name: "toml",
			configTemplate: `
%v = "https://localhost:9001"
%v = "A1aVtMxLCUHmBVHXoZzzBgPbW/wj5axDpW9X8l91SGo="
%v = true

[%v]
%v = true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := fmt.Sprintf(tt.configTemplate, urlField, publicKeyField, multiTenancyField, tlsConfigField, insecureSkipVerifyField)

			want := Enclave{
				URL:          "https://localhost:9001",
				PublicKey:    "A1aVtMxLCUHmBVHXoZzzBgPbW/wj5axDpW9X8l91SGo=",
				MultiTenancy: true,
				TLSConfig: &ClientTLS{
					InsecureSkipVerify: true,
				},
			}

			var (
				got Enclave
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

func TestEnclave_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Enclave)
		wantErrMsg string
	}{
		{
			name:   "minimum valid",
			modify: func(*Enclave) {},
		},
		{
			name:       "no url",
			modify:     func(c *Enclave) { c.URL = "" },
			wantErrMsg: urlField + " is empty",
		},
		{
			name:       "relative url",
			modify:     func(c *Enclave) { c.URL = "/upcheck" },
			wantErrMsg: urlField + " must be an absolute url",
		},
		{
			name:       "no public key",
			modify:     func(c *Enclave) { c.PublicKey = "" },
			wantErrMsg: publicKeyField + " is empty",
		},
		{
			name:       "public key not base64",
			modify:     func(c *Enclave) { c.PublicKey = "not-base64!" },
			wantErrMsg: publicKeyField + " must be a base64 encoded 32 byte key",
		},
		{
			name:       "public key wrong length",
			modify:     func(c *Enclave) { c.PublicKey = "YWJj" },
			wantErrMsg: publicKeyField + " must be a base64 encoded 32 byte key",
		},
		{
			name:       "invalid tls",
			modify:     func(c *Enclave) { c.TLSConfig = &ClientTLS{} },
			wantErrMsg: fmt.Sprintf("%v.%v is empty", tlsConfigField, caCertificateFileField),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := minimumValidEnclave()
			tt.modify(&c)

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
