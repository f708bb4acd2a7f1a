// Package snapshot exports and restores a single layer.Layer's pairs to and
// from a newline-delimited HuJSON file. It is a point-in-time convenience,
// not a write-ahead log or a disk-backed layer: a crash between Dump calls
// loses nothing that wasn't already lost, and a crash mid-write never
// leaves a truncated file visible, since the write goes through
// natefinch/atomic's temp-file-plus-rename.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/base32"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/arguskv/argus/pkg/layer"
)

// encoding is the standard (RFC 4648) base32 alphabet without padding,
// used to render keys and payloads as JSON strings; it has no relation to
// the uid package's Crockford codec, which only ever encodes 16-byte values.
var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// record is one line of the snapshot file.
type record struct {
	Key     string `json:"key"`
	Payload string `json:"payload"`
	Deleted bool   `json:"deleted"`
}

// Dump writes every pair in l (live records and tombstones) to path, one
// HuJSON object per line, in the same descending-key order l.Pairs yields.
func Dump(l layer.Layer, path string) error {
	var buf bytes.Buffer

	for p := range l.Pairs() {
		rec := record{
			Key:     encoding.EncodeToString(p.Key),
			Payload: encoding.EncodeToString(p.Record.Payload),
			Deleted: p.Record.Deleted,
		}

		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("snapshot: encode %q: %w", p.Key, err)
		}

		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}

	return nil
}

// Restore reads path and seeds it into a fresh *layer.Memory, leaving any
// layer the caller already has untouched.
func Restore(path string) (*layer.Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	m := layer.NewMemory()

	var pairs []layer.Pair

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
		}

		key, err := encoding.DecodeString(rec.Key)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decode key in %s: %w", path, err)
		}

		payload, err := encoding.DecodeString(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decode payload in %s: %w", path, err)
		}

		pairs = append(pairs, layer.Pair{
			Key: key,
			Record: layer.Record{
				Payload: payload,
				Deleted: rec.Deleted,
			},
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	m.SeedFromPairs(pairs)

	return m, nil
}
