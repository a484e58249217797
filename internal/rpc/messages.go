package rpc

import (
	"google.golang.org/protobuf/encoding/protowire"

	"vcboard/internal/board"
	"vcboard/internal/gossip"
	"vcboard/internal/storage"
)

// PostRequest asks a process to create a post.
//
//	message PostRequest { string process = 1; string message = 2; }
type PostRequest struct {
	Process string
	Message string
}

func (r *PostRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, r.Process)
	return appendString(b, 2, r.Message)
}

func (r *PostRequest) unmarshalWire(b []byte) error {
	*r = PostRequest{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		var err error
		switch num {
		case 1:
			r.Process, err = consumeString(typ, v)
		case 2:
			r.Message, err = consumeString(typ, v)
		}
		return err
	})
}

// PostResponse carries the created post.
//
//	message PostResponse { Post post = 1; }
type PostResponse struct {
	Post storage.Post
}

func (r *PostResponse) appendWire(b []byte) []byte {
	return appendMessage(b, 1, appendPost(nil, r.Post))
}

func (r *PostResponse) unmarshalWire(b []byte) error {
	*r = PostResponse{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 {
			return nil
		}
		raw, err := consumeBytes(typ, v)
		if err != nil {
			return err
		}
		r.Post, err = unmarshalPost(raw)
		return err
	})
}

// SyncRequest asks two processes to exchange missing posts.
//
//	message SyncRequest { string a = 1; string b = 2; }
type SyncRequest struct {
	A string
	B string
}

func (r *SyncRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, r.A)
	return appendString(b, 2, r.B)
}

func (r *SyncRequest) unmarshalWire(b []byte) error {
	*r = SyncRequest{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		var err error
		switch num {
		case 1:
			r.A, err = consumeString(typ, v)
		case 2:
			r.B, err = consumeString(typ, v)
		}
		return err
	})
}

// SyncResponse reports the deliveries of one exchange.
//
//	message SyncResponse { int64 pulled = 1; int64 pushed = 2; }
type SyncResponse struct {
	Stats gossip.ExchangeStats
}

func (r *SyncResponse) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(r.Stats.Pulled))
	return appendVarint(b, 2, uint64(r.Stats.Pushed))
}

func (r *SyncResponse) unmarshalWire(b []byte) error {
	*r = SyncResponse{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 && num != 2 {
			return nil
		}
		x, err := consumeVarint(typ, v)
		if err != nil {
			return err
		}
		if num == 1 {
			r.Stats.Pulled = int(x)
		} else {
			r.Stats.Pushed = int(x)
		}
		return nil
	})
}

// ViewRequest asks for one process's view of the board.
//
//	message ViewRequest { string process = 1; }
type ViewRequest struct {
	Process string
}

func (r *ViewRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, r.Process)
}

func (r *ViewRequest) unmarshalWire(b []byte) error {
	*r = ViewRequest{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 {
			return nil
		}
		var err error
		r.Process, err = consumeString(typ, v)
		return err
	})
}

// ViewResponse carries a process's view.
//
//	message ViewResponse { View view = 1; }
type ViewResponse struct {
	View board.View
}

func (r *ViewResponse) appendWire(b []byte) []byte {
	return appendMessage(b, 1, appendView(nil, r.View))
}

func (r *ViewResponse) unmarshalWire(b []byte) error {
	*r = ViewResponse{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 {
			return nil
		}
		raw, err := consumeBytes(typ, v)
		if err != nil {
			return err
		}
		r.View, err = unmarshalView(raw)
		return err
	})
}

// GossipRequest asks for up to Rounds anti-entropy rounds.
//
//	message GossipRequest { int32 rounds = 1; }
type GossipRequest struct {
	Rounds int
}

func (r *GossipRequest) appendWire(b []byte) []byte {
	return appendVarint(b, 1, uint64(r.Rounds))
}

func (r *GossipRequest) unmarshalWire(b []byte) error {
	*r = GossipRequest{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 {
			return nil
		}
		x, err := consumeVarint(typ, v)
		r.Rounds = int(int32(x))
		return err
	})
}

// GossipResponse summarizes the rounds run.
//
//	message GossipResponse { int32 rounds = 1; int64 deliveries = 2; bool converged = 3; }
type GossipResponse struct {
	Result board.GossipResult
}

func (r *GossipResponse) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(r.Result.Rounds))
	b = appendVarint(b, 2, uint64(r.Result.Deliveries))
	return appendBool(b, 3, r.Result.Converged)
}

func (r *GossipResponse) unmarshalWire(b []byte) error {
	*r = GossipResponse{}
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num < 1 || num > 3 {
			return nil
		}
		x, err := consumeVarint(typ, v)
		if err != nil {
			return err
		}
		switch num {
		case 1:
			r.Result.Rounds = int(x)
		case 2:
			r.Result.Deliveries = int(x)
		case 3:
			r.Result.Converged = protowire.DecodeBool(x)
		}
		return nil
	})
}
