package rpcpolling

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Redacted-Capital/lite-rpc/pkg/broadcast"
	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
)

type fakeClient struct {
	clusterNodes func(ctx context.Context) ([]*rpc.GetClusterNodesResult, error)
	voteAccounts func(ctx context.Context) (*rpc.GetVoteAccountsResult, error)
}

func (f *fakeClient) GetClusterNodes(ctx context.Context) ([]*rpc.GetClusterNodesResult, error) {
	return f.clusterNodes(ctx)
}

func (f *fakeClient) GetVoteAccounts(ctx context.Context, _ *rpc.GetVoteAccountsOpts) (*rpc.GetVoteAccountsResult, error) {
	return f.voteAccounts(ctx)
}

func newTestPoller(client Client) (*Poller, *broadcast.Channel[[]*rpc.GetClusterNodesResult], *broadcast.Channel[*rpc.GetVoteAccountsResult]) {
	clusterInfo := broadcast.New[[]*rpc.GetClusterNodesResult](broadcast.DefaultCapacity)
	voteAccounts := broadcast.New[*rpc.GetVoteAccountsResult](broadcast.DefaultCapacity)
	cfg := Config{
		ClusterInfoInterval:  5 * time.Millisecond,
		VoteAccountsInterval: 5 * time.Millisecond,
	}
	return New(logger.Nop(), client, cfg, clusterInfo, voteAccounts), clusterInfo, voteAccounts
}

func TestPollClusterInfo(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		clusterNodes: func(context.Context) ([]*rpc.GetClusterNodesResult, error) {
			return []*rpc.GetClusterNodesResult{{Gossip: strPtr("127.0.0.1:8001")}}, nil
		},
	}
	p, clusterInfo, _ := newTestPoller(client)
	sub := clusterInfo.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.PollClusterInfo(ctx) }()

	select {
	case nodes := <-sub.Updates():
		require.Len(t, nodes, 1)
		require.NotNil(t, nodes[0].Gossip)
		assert.Equal(t, "127.0.0.1:8001", *nodes[0].Gossip)
	case <-time.After(time.Second):
		t.Fatal("no cluster info published")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollVoteAccounts(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		voteAccounts: func(context.Context) (*rpc.GetVoteAccountsResult, error) {
			return &rpc.GetVoteAccountsResult{
				Current: []rpc.VoteAccountsResult{{ActivatedStake: 42}},
			}, nil
		},
	}
	p, _, voteAccounts := newTestPoller(client)
	sub := voteAccounts.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.PollVoteAccounts(ctx) }()

	select {
	case accounts := <-sub.Updates():
		require.Len(t, accounts.Current, 1)
		assert.Equal(t, uint64(42), accounts.Current[0].ActivatedStake)
	case <-time.After(time.Second):
		t.Fatal("no vote accounts published")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollFailuresAreRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	client := &fakeClient{
		clusterNodes: func(context.Context) ([]*rpc.GetClusterNodesResult, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("rpc unavailable")
			}
			return []*rpc.GetClusterNodesResult{}, nil
		},
	}
	p, clusterInfo, _ := newTestPoller(client)
	sub := clusterInfo.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.PollClusterInfo(ctx) }()

	select {
	case <-sub.Updates():
		assert.GreaterOrEqual(t, calls, 2)
	case <-time.After(time.Second):
		t.Fatal("poller did not recover from the failed poll")
	}
}

func strPtr(s string) *string { return &s }
