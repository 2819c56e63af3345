// SPDX-License-Identifier: MIT
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes Registry in the text exposition format to path for
// the node_exporter textfile collector. The write is atomic.
func WriteTextfile(path string) error {
	return writeTextfile(path, Registry)
}

func writeTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
