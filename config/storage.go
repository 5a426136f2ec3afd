package config

type Storage struct {
	Path     string `toml:"path" json:"path"`
	InMemory bool   `toml:"inMemory" json:"inMemory"`
}

func (c Storage) IsValid() error {
	if c.Path == "" && !c.InMemory {
		return newFieldErr("path", isEmptyErr)
	}
	return nil
}
