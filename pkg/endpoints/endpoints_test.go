package endpoints

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Redacted-Capital/lite-rpc/pkg/geyser"
	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
	"github.com/Redacted-Capital/lite-rpc/pkg/rpcpolling"
)

type stubRPC struct{}

func (stubRPC) GetClusterNodes(context.Context) ([]*rpc.GetClusterNodesResult, error) {
	return nil, nil
}

func (stubRPC) GetVoteAccounts(context.Context, *rpc.GetVoteAccountsOpts) (*rpc.GetVoteAccountsResult, error) {
	return &rpc.GetVoteAccountsResult{}, nil
}

func testConfig() Config {
	return Config{
		Sources: []geyser.SourceConfig{{
			Name:               "test",
			Endpoint:           "localhost:1",
			InsecureConnection: true,
		}},
		Commitment: rpc.CommitmentConfirmed,
		Polling: rpcpolling.Config{
			ClusterInfoInterval:  time.Hour,
			VoteAccountsInterval: time.Hour,
		},
	}
}

func TestCreateGrpcSubscriptionValidation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _, err := CreateGrpcSubscription(ctx, logger.Test(t), Config{}, stubRPC{})
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Sources[0].Endpoint = ""
	_, _, err = CreateGrpcSubscription(ctx, logger.Test(t), cfg, stubRPC{})
	assert.Error(t, err)
}

func TestCreateGrpcSubscriptionWithoutAccountFilters(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	streams, group, err := CreateGrpcSubscription(ctx, logger.Test(t), testConfig(), stubRPC{})
	require.NoError(t, err)

	assert.NotNil(t, streams.Blocks)
	assert.NotNil(t, streams.Slots)
	assert.NotNil(t, streams.ClusterInfo)
	assert.NotNil(t, streams.VoteAccounts)
	assert.Nil(t, streams.Accounts, "no account stream without filters")
	assert.Len(t, group.Handles(), 4)

	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	assert.Error(t, group.Wait(waitCtx))
	for _, h := range group.Handles() {
		<-h.Done()
	}
}

func TestCreateGrpcSubscriptionWithAccountFilters(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig()
	cfg.AccountFilters = geyser.AccountFilters{{Owners: []string{"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"}}}

	streams, group, err := CreateGrpcSubscription(ctx, logger.Test(t), cfg, stubRPC{})
	require.NoError(t, err)

	require.NotNil(t, streams.Accounts)
	assert.Len(t, group.Handles(), 5)

	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	assert.Error(t, group.Wait(waitCtx))
	for _, h := range group.Handles() {
		<-h.Done()
	}
}
