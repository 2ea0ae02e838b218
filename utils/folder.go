package utils

import "os"

// CreateFolder creates a directory (and parents) if it does not exist.
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0755)
}
