package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/andreyvit/tinyjson"

	"vim3-go/bus"
)

const configPrefix = "config"

// EmbeddedConfigLookup allows overriding how profiles are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Boards lists the embedded board ids.
func Boards() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Decode strictly decodes raw JSON into dst. Fields absent from raw keep
// whatever dst already holds.
func Decode(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("config: trailing data after profile")
	}
	return nil
}

// Load decodes the embedded profile for board into dst.
func Load(board string, dst any) error {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for board: " + board)
	}
	return Decode(raw, dst)
}

// Publish reads the board profile from embedded data and publishes each
// top-level key as a retained message on config/<board>/<key>.
func Publish(conn *bus.Connection, board string) error {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for board: " + board)
	}
	m, err := parseObject(raw)
	if err != nil {
		return err
	}
	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, board, k), v, true))
	}
	return nil
}

// parseObject decodes a top-level JSON object. tinyjson reports syntax
// errors by panicking.
func parseObject(raw []byte) (m map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("config: bad embedded JSON: %v", r)
		}
	}()
	r := tinyjson.Raw(raw)
	val := r.Value() // should be a map[string]any
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, errors.New("embedded config is not a JSON object")
	}
	return m, nil
}
