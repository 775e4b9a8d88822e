package main

import (
	_ "embed"
	"os"
)

//go:embed data/collision.yaml
var defaultConfig []byte

//go:embed data/coin.tengo
var defaultCoinScript []byte

// readOr returns the contents of path, or fallback when path is empty.
func readOr(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	return os.ReadFile(path)
}
