package rpc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"vcboard/internal/board"
	"vcboard/internal/clock"
	"vcboard/internal/storage"
)

//	message Post {
//	  int64 id = 1;
//	  string author = 2;
//	  string message = 3;
//	  Timestamp timestamp = 4;
//	}
func appendPost(b []byte, p storage.Post) []byte {
	b = appendVarint(b, 1, uint64(p.ID))
	b = appendString(b, 2, p.Author)
	b = appendString(b, 3, p.Message)
	return appendMessage(b, 4, clock.MarshalWire(p.Timestamp))
}

func unmarshalPost(b []byte) (storage.Post, error) {
	var p storage.Post
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		var err error
		switch num {
		case 1:
			var x uint64
			x, err = consumeVarint(typ, v)
			p.ID = int64(x)
		case 2:
			p.Author, err = consumeString(typ, v)
		case 3:
			p.Message, err = consumeString(typ, v)
		case 4:
			var raw []byte
			if raw, err = consumeBytes(typ, v); err == nil {
				p.Timestamp, err = clock.UnmarshalWire(raw)
			}
		}
		return err
	})
	if err != nil {
		return storage.Post{}, fmt.Errorf("rpc: decode post: %w", err)
	}
	return p, nil
}

//	message View {
//	  string process = 1;
//	  Timestamp clock = 2;
//	  repeated ViewEntry entries = 3;
//	  repeated int64 frontier = 4;
//	}
//	message ViewEntry { Post post = 1; Ordering relation = 2; }
func appendView(b []byte, v board.View) []byte {
	b = appendString(b, 1, v.Process)
	b = appendMessage(b, 2, clock.MarshalWire(v.Clock))
	for _, e := range v.Entries {
		var entry []byte
		entry = appendMessage(entry, 1, appendPost(nil, e.Post))
		entry = appendVarint(entry, 2, uint64(e.Relation))
		b = appendMessage(b, 3, entry)
	}
	return appendPackedInt64s(b, 4, v.Frontier)
}

func unmarshalView(b []byte) (board.View, error) {
	var v board.View
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		var err error
		switch num {
		case 1:
			v.Process, err = consumeString(typ, raw)
		case 2:
			var inner []byte
			if inner, err = consumeBytes(typ, raw); err == nil {
				v.Clock, err = clock.UnmarshalWire(inner)
			}
		case 3:
			var inner []byte
			if inner, err = consumeBytes(typ, raw); err == nil {
				var e board.Entry
				if e, err = unmarshalViewEntry(inner); err == nil {
					v.Entries = append(v.Entries, e)
				}
			}
		case 4:
			v.Frontier, err = consumeInt64s(v.Frontier, typ, raw)
		}
		return err
	})
	if err != nil {
		return board.View{}, fmt.Errorf("rpc: decode view: %w", err)
	}
	if v.Entries == nil {
		v.Entries = []board.Entry{}
	}
	if v.Frontier == nil {
		v.Frontier = []int64{}
	}
	return v, nil
}

func unmarshalViewEntry(b []byte) (board.Entry, error) {
	var e board.Entry
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			raw, err := consumeBytes(typ, v)
			if err != nil {
				return err
			}
			e.Post, err = unmarshalPost(raw)
			return err
		case 2:
			x, err := consumeVarint(typ, v)
			if err != nil {
				return err
			}
			if x > uint64(clock.Equal) {
				return fmt.Errorf("rpc: unknown relation %d", x)
			}
			e.Relation = clock.Ordering(x)
		}
		return nil
	})
	return e, err
}
