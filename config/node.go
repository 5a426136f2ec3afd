package config

// Node is the configuration of the gateway.
type Node struct {
	Name         string        `toml:"name" json:"name"`
	Server       *Server       `toml:"server" json:"server"`
	Enclave      *Enclave      `toml:"enclave" json:"enclave"`
	MarkerSigner *MarkerSigner `toml:"markerSigner" json:"markerSigner"`
	TxPool       *TxPool       `toml:"txPool" json:"txPool"`
	Storage      *Storage      `toml:"storage" json:"storage"`
	Log          *Log          `toml:"log" json:"log"`
	Accounts     []Account     `toml:"accounts" json:"accounts"`
}

func (c Node) IsValid() error {
	if c.Name == "" {
		return newFieldErr("name", isEmptyErr)
	}
	if c.Server == nil {
		return newFieldErr("server", isEmptyErr)
	}
	if err := c.Server.IsValid(); err != nil {
		return newFieldErr("server", err)
	}
	if c.Enclave == nil {
		return newFieldErr("enclave", isEmptyErr)
	}
	if err := c.Enclave.IsValid(); err != nil {
		return newFieldErr("enclave", err)
	}
	if c.Enclave.MultiTenancy && c.Server.Auth == nil {
		return newFieldErr("enclave", newFieldErr("multiTenancy", multiTenancyWithoutAuthErr))
	}
	if c.MarkerSigner == nil {
		return newFieldErr("markerSigner", isEmptyErr)
	}
	if err := c.MarkerSigner.IsValid(); err != nil {
		return newFieldErr("markerSigner", err)
	}
	if c.TxPool == nil {
		return newFieldErr("txPool", isEmptyErr)
	}
	if err := c.TxPool.IsValid(); err != nil {
		return newFieldErr("txPool", err)
	}
	if c.Storage == nil {
		return newFieldErr("storage", isEmptyErr)
	}
	if err := c.Storage.IsValid(); err != nil {
		return newFieldErr("storage", err)
	}
	if c.Log != nil {
		if err := c.Log.IsValid(); err != nil {
			return newFieldErr("log", err)
		}
	}
	for i, a := range c.Accounts {
		if err := a.IsValid(); err != nil {
			return newArrFieldErr("accounts", i, err)
		}
	}
	return nil
}
