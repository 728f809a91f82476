//go:build !linux

package decoder

import (
	"errors"
	"os"
)

// OpenSerial is unsupported off Linux; the daemon can still ingest from a
// piped stream for development.
func OpenSerial(device string, baud int) (*os.File, error) {
	return nil, errors.New("serial ingestion is only supported on linux")
}
