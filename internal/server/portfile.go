package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PortFile is where a running host records its REST port for local clients.
var PortFile = filepath.Join(os.TempDir(), "dinotidus-host.port")

// WritePortFile records port for the CLI to discover.
func WritePortFile(port int) error {
	return os.WriteFile(PortFile, []byte(strconv.Itoa(port)), 0644)
}

// ReadPortFile returns the port recorded by a running host.
func ReadPortFile() (int, error) {
	data, err := os.ReadFile(PortFile)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid port file %s: %q", PortFile, data)
	}
	return port, nil
}

// CleanupPortFile removes the port file.
func CleanupPortFile() {
	os.Remove(PortFile)
}
