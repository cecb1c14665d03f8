package coreir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// DecodeOptions tune decoding.
type DecodeOptions struct {
	// Source names the input; it fills spans without a file and the module
	// Source field.
	Source string
}

// Decode reads one JSON IR document.
func Decode(r io.Reader, opts DecodeOptions) (*Module, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, &ContractError{Source: opts.Source, Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, &ContractError{Source: opts.Source, Msg: "trailing data after the IR document"}
	}
	return FromTree(tree, opts)
}

// DecodeMsgpack reads one IR document encoded with msgpack. The document has
// the same shape as the JSON form.
func DecodeMsgpack(r io.Reader, opts DecodeOptions) (*Module, error) {
	dec := msgpack.NewDecoder(r)
	tree, err := dec.DecodeInterface()
	if err != nil {
		return nil, &ContractError{Source: opts.Source, Msg: fmt.Sprintf("invalid msgpack: %v", err)}
	}
	return FromTree(tree, opts)
}

// DecodeBytes picks the decoder by the source extension: .msgpack/.mpk are
// msgpack, everything else JSON.
func DecodeBytes(data []byte, opts DecodeOptions) (*Module, error) {
	switch strings.ToLower(filepath.Ext(opts.Source)) {
	case ".msgpack", ".mpk":
		return DecodeMsgpack(bytes.NewReader(data), opts)
	default:
		return Decode(bytes.NewReader(data), opts)
	}
}

// LoadFile reads and decodes an IR file. I/O failures are returned wrapped,
// not as ContractError.
func LoadFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read core ir: %w", err)
	}
	return DecodeBytes(data, DecodeOptions{Source: path})
}

// FromTree converts a generic document (maps, slices, scalars as produced by
// encoding/json or msgpack) into a Module.
func FromTree(tree any, opts DecodeOptions) (*Module, error) {
	d := &decoder{source: opts.Source}
	mod := d.module(tree)
	if d.err != nil {
		return nil, d.err
	}
	mod.Source = opts.Source
	return mod, nil
}
