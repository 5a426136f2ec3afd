package config

import (
	"errors"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/naoina/toml"
)

type NodeReader interface {
	Read() (Node, error)
}

// NewNodeReader picks a reader by file extension.
func NewNodeReader(f string) (NodeReader, error) {
	if strings.HasSuffix(f, ".toml") {
		return tomlNodeReader{file: f}, nil
	} else if strings.HasSuffix(f, ".json") {
		return jsonNodeReader{file: f}, nil
	}
	return nil, errors.New("unsupported config file format")
}

type tomlNodeReader struct {
	file string
}

func (r tomlNodeReader) Read() (Node, error) {
	f, err := os.Open(r.file)
	if err != nil {
		return Node{}, err
	}
	defer f.Close()
	var input Node
	if err = toml.NewDecoder(f).Decode(&input); err != nil {
		return Node{}, err
	}

	return input, nil
}

type jsonNodeReader struct {
	file string
}

func (r jsonNodeReader) Read() (Node, error) {
	f, err := os.Open(r.file)
	if err != nil {
		return Node{}, err
	}
	defer f.Close()
	var input Node
	if err = json.NewDecoder(f).Decode(&input); err != nil {
		return Node{}, err
	}

	return input, nil
}
