package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes the registry in the node_exporter textfile format.
// The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
