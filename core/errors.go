package core

import "errors"

var ErrEnclaveDown = errors.New("enclave is not up")
