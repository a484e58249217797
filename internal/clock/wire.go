package clock

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire layout, protobuf compatible:
//
//	message Timestamp { repeated Entry entries = 1; }
//	message Entry { string process = 1; int64 counter = 2; }
const (
	fieldEntries      protowire.Number = 1
	fieldEntryProcess protowire.Number = 1
	fieldEntryCounter protowire.Number = 2
)

// AppendWire appends the wire encoding of ts to b. Entries are written in
// process order so equal timestamps encode to equal bytes.
func AppendWire(b []byte, ts Timestamp) []byte {
	for _, e := range ts.Entries() {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldEntryProcess, protowire.BytesType)
		entry = protowire.AppendString(entry, e.Process)
		entry = protowire.AppendTag(entry, fieldEntryCounter, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(e.Counter))

		b = protowire.AppendTag(b, fieldEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

// MarshalWire returns the wire encoding of ts.
func MarshalWire(ts Timestamp) []byte {
	return AppendWire(nil, ts)
}

// UnmarshalWire decodes a timestamp. Unknown fields are skipped.
func UnmarshalWire(b []byte) (Timestamp, error) {
	var entries []Entry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		if num == fieldEntries && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]

			e, err := unmarshalEntry(raw)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return FromEntries(entries)
}

func unmarshalEntry(b []byte) (Entry, error) {
	var e Entry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fieldEntryProcess && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			e.Process = s
			b = b[n:]
		case num == fieldEntryCounter && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			e.Counter = int64(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Entry{}, fmt.Errorf("clock: entry field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return e, nil
}
