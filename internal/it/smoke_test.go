package it

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcboard/internal/board"
	"vcboard/internal/clock"
	"vcboard/internal/scenario"
)

func logOutput() io.Writer {
	if os.Getenv("VCBOARD_IT_LOGS") != "" {
		return os.Stderr
	}
	return io.Discard
}

func TestSmoke_DemoOverGRPCMatchesLocalRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	script := scenario.Default()

	cluster := NewCluster(logOutput())
	defer cluster.Stop()

	srv, err := cluster.StartServer(ctx, "demo", script.Processes, 0)
	require.NoError(t, err, "Failed to start server")

	remote, err := Replay(ctx, srv.GetClient(), script)
	require.NoError(t, err)

	local, err := script.NewBoard(board.WithGossipSeed(1))
	require.NoError(t, err)
	res, err := scenario.Run(ctx, local, script, io.Discard)
	require.NoError(t, err)

	require.Len(t, remote, len(res.Views))
	for i := range remote {
		assert.Equal(t, res.Views[i], remote[i], "view %d (%s)", i, remote[i].Process)
	}

	final := remote[len(remote)-3]
	assert.Equal(t, "Alice", final.Process)
	assert.Equal(t, clock.Timestamp{"Alice": 5, "Bob": 1, "Charlie": 4}, final.Clock)
	assert.Equal(t, []int64{3, 5}, final.Frontier)
}

func TestSmoke_BackgroundGossipConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	processes := []string{"n1", "n2", "n3", "n4", "n5"}

	cluster := NewCluster(logOutput())
	defer cluster.Stop()

	srv, err := cluster.StartServer(ctx, "gossip", processes, 20*time.Millisecond)
	require.NoError(t, err)
	client := srv.GetClient()

	for _, p := range processes {
		_, err := client.Post(ctx, p, "hello from "+p)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		for _, p := range processes {
			v, err := client.View(ctx, p)
			if err != nil || len(v.Entries) != len(processes) {
				return false
			}
		}
		return true
	}, 10*time.Second, 20*time.Millisecond, "every process should eventually hold every post")

	v, err := client.View(ctx, "n3")
	require.NoError(t, err)
	assert.Len(t, v.Frontier, len(processes), "independent posts are all concurrent heads")
}

func TestSmoke_IndependentServers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cluster := NewCluster(logOutput())
	defer cluster.Stop()

	_, err := cluster.StartServer(ctx, "east", []string{"a", "b"}, 0)
	require.NoError(t, err)
	_, err = cluster.StartServer(ctx, "west", []string{"a", "b"}, 0)
	require.NoError(t, err)

	east := cluster.GetServer("east").GetClient()
	west := cluster.GetServer("west").GetClient()
	require.Nil(t, cluster.GetServer("north"))

	_, err = east.Post(ctx, "a", "only east")
	require.NoError(t, err)

	v, err := west.View(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, v.Entries, "boards on different servers share nothing")

	_, err = west.Post(ctx, "c", "no such process")
	assert.ErrorIs(t, err, board.ErrUnknownProcess)
}
