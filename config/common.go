package config

import (
	"errors"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
)

func isValidUrl(addr string) error {
	u, err := url.Parse(addr)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute url")
	}
	return nil
}

func isValidAddress(addr string) error {
	if !common.IsHexAddress(addr) {
		return isNotHexAddressErr
	}
	return nil
}
