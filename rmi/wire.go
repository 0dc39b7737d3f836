package rmi

// request is what a stub writes to the wire for one call: the method name,
// one gob-encoded sub-stream per positional argument, and a human-readable
// type name per argument (informational: the skeleton decodes each argument
// using the concrete parameter type resolved from the bound method, not
// from this list).
type request struct {
	Method   string
	ArgTypes []string
	Args     [][]byte
}

// response is what a skeleton writes back: either a gob-encoded return
// value, or an error tagged with the Kind it should be reconstructed as.
type response struct {
	Value  []byte
	HasErr bool
	Kind   Kind
	ErrMsg string
}
