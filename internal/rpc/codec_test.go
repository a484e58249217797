package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"vcboard/internal/board"
	"vcboard/internal/clock"
	"vcboard/internal/storage"
)

func TestCodec_RejectsForeignTypes(t *testing.T) {
	c := Codec()
	assert.Equal(t, "vcwire", c.Name())

	_, err := c.Marshal("not a message")
	assert.Error(t, err)
	assert.Error(t, c.Unmarshal(nil, new(int)))
}

func TestCodec_ViewResponse(t *testing.T) {
	post := storage.Post{
		ID:        7,
		Author:    "Bob",
		Message:   "hi",
		Timestamp: clock.Timestamp{"Alice": 1, "Bob": 3},
	}
	in := &ViewResponse{View: board.View{
		Process: "Alice",
		Clock:   clock.Timestamp{"Alice": 4, "Bob": 3},
		Entries: []board.Entry{
			{Post: post, Relation: clock.Before},
			{Post: storage.Post{ID: 9, Author: "Alice", Timestamp: clock.Timestamp{"Alice": 4, "Bob": 3}}, Relation: clock.Equal},
		},
		Frontier: []int64{9},
	}}

	data, err := Codec().Marshal(in)
	require.NoError(t, err)

	out := new(ViewResponse)
	require.NoError(t, Codec().Unmarshal(data, out))
	assert.Equal(t, in, out)
}

func TestCodec_UnmarshalResetsReceiver(t *testing.T) {
	out := &PostRequest{Process: "stale", Message: "stale"}
	require.NoError(t, Codec().Unmarshal((&PostRequest{Process: "Alice"}).appendWire(nil), out))
	assert.Equal(t, &PostRequest{Process: "Alice"}, out)
}

func TestCodec_SkipsUnknownFields(t *testing.T) {
	b := (&SyncRequest{A: "Alice", B: "Bob"}).appendWire(nil)
	b = protowire.AppendTag(b, 15, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	out := new(SyncRequest)
	require.NoError(t, Codec().Unmarshal(b, out))
	assert.Equal(t, &SyncRequest{A: "Alice", B: "Bob"}, out)
}

func TestCodec_WrongWireType(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)

	err := Codec().Unmarshal(b, new(ViewRequest))
	assert.ErrorIs(t, err, errWireType)
}

func TestCodec_Truncated(t *testing.T) {
	b := (&PostRequest{Process: "Alice", Message: "hello"}).appendWire(nil)
	assert.Error(t, Codec().Unmarshal(b[:len(b)-2], new(PostRequest)))
}

func TestCodec_UnknownRelation(t *testing.T) {
	var entry []byte
	entry = appendVarint(entry, 2, 99)
	var view []byte
	view = appendMessage(view, 3, entry)

	_, err := unmarshalView(view)
	assert.Error(t, err)
}

func TestConsumeInt64s_Unpacked(t *testing.T) {
	var b []byte
	for _, x := range []int64{3, 5} {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(x))
	}

	v, err := unmarshalView(b)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, v.Frontier)
}

func TestGossipMessages(t *testing.T) {
	req := &GossipRequest{Rounds: -2}
	got := new(GossipRequest)
	require.NoError(t, got.unmarshalWire(req.appendWire(nil)))
	assert.Equal(t, -2, got.Rounds)

	resp := &GossipResponse{Result: board.GossipResult{Rounds: 3, Deliveries: 12, Converged: true}}
	gotResp := new(GossipResponse)
	require.NoError(t, gotResp.unmarshalWire(resp.appendWire(nil)))
	assert.Equal(t, resp, gotResp)
}
