package log

import (
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Reader streams events from a trace file produced by FileLogger.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
}

// NewReader opens a trace file for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: decMode.NewDecoder(f),
	}, nil
}

// Next returns the next event, or io.EOF at the end of the file.
func (r *Reader) Next() (Event, error) {
	var event Event
	if err := r.decoder.Decode(&event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Close closes the trace file.
func (r *Reader) Close() error {
	return r.file.Close()
}
