package path

import (
	"bytes"
	"encoding/gob"
)

// pathWire is the exported shape gob actually marshals; Path keeps its
// field unexported so callers cannot construct one bypassing New/Join.
type pathWire struct {
	Components []string
}

// GobEncode implements gob.GobEncoder. Without it gob would silently encode
// a Path's unexported field as nothing, since gob only sees exported
// fields of a struct by default.
func (p Path) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(pathWire{Components: p.components}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (p *Path) GobDecode(data []byte) error {
	var w pathWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	p.components = w.Components
	return nil
}
