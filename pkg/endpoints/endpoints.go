// Package endpoints assembles the full ingestion surface: multiplexed block,
// slot and account streams from the geyser sources plus the JSON-RPC pollers,
// bundled with the supervised tasks that keep them running.
package endpoints

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/Redacted-Capital/lite-rpc/pkg/blocks"
	"github.com/Redacted-Capital/lite-rpc/pkg/broadcast"
	"github.com/Redacted-Capital/lite-rpc/pkg/geyser"
	"github.com/Redacted-Capital/lite-rpc/pkg/grpcmux"
	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
	"github.com/Redacted-Capital/lite-rpc/pkg/rpcpolling"
	"github.com/Redacted-Capital/lite-rpc/pkg/tasks"
	"github.com/Redacted-Capital/lite-rpc/pkg/types"
)

type Config struct {
	// Sources are the redundant geyser endpoints backing every stream.
	Sources []geyser.SourceConfig
	// Commitment applies to the block stream.
	Commitment rpc.CommitmentType
	// AccountFilters enable the account stream when non-empty.
	AccountFilters geyser.AccountFilters
	// Polling configures the JSON-RPC pollers.
	Polling rpcpolling.Config
}

func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("endpoints config: no geyser sources")
	}
	for _, source := range c.Sources {
		if err := source.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EndpointStreaming bundles every stream the ingestion layer produces.
// Accounts is nil unless account filters were configured.
type EndpointStreaming struct {
	Blocks       *broadcast.Channel[*types.ProducedBlock]
	Slots        *broadcast.Channel[types.SlotNotification]
	Accounts     *broadcast.Channel[types.AccountUpdate]
	ClusterInfo  *broadcast.Channel[[]*rpc.GetClusterNodesResult]
	VoteAccounts *broadcast.Channel[*rpc.GetVoteAccountsResult]
}

// CreateGrpcSubscription wires the multiplexers and pollers together and
// starts them. The returned task group must be supervised by the caller;
// any task exiting means the subscription set is stale.
func CreateGrpcSubscription(ctx context.Context, lgr logger.Logger, cfg Config, rpcClient rpcpolling.Client) (*EndpointStreaming, *tasks.Group, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	streams := &EndpointStreaming{
		Blocks:       broadcast.New[*types.ProducedBlock](broadcast.DefaultCapacity),
		Slots:        broadcast.New[types.SlotNotification](broadcast.DefaultCapacity),
		ClusterInfo:  broadcast.New[[]*rpc.GetClusterNodesResult](broadcast.DefaultCapacity),
		VoteAccounts: broadcast.New[*rpc.GetVoteAccountsResult](broadcast.DefaultCapacity),
	}

	decoder := blocks.NewDecoder(lgr)
	blockMux := grpcmux.NewBlockMultiplexer(lgr, cfg.Sources, cfg.Commitment, decoder, streams.Blocks)
	slotMux := grpcmux.NewSlotMultiplexer(lgr, cfg.Sources, streams.Slots)
	poller := rpcpolling.New(lgr, rpcClient, cfg.Polling, streams.ClusterInfo, streams.VoteAccounts)

	group := tasks.NewGroup(
		tasks.Spawn("grpc_blocks", func() error { return blockMux.Run(ctx) }),
		tasks.Spawn("grpc_slots", func() error { return slotMux.Run(ctx) }),
		tasks.Spawn("poll_cluster_info", func() error { return poller.PollClusterInfo(ctx) }),
		tasks.Spawn("poll_vote_accounts", func() error { return poller.PollVoteAccounts(ctx) }),
	)

	if !cfg.AccountFilters.IsEmpty() {
		streams.Accounts = broadcast.New[types.AccountUpdate](broadcast.DefaultCapacity)
		accountMux := grpcmux.NewAccountMultiplexer(lgr, cfg.Sources, cfg.AccountFilters, streams.Accounts)
		group.Add(tasks.Spawn("grpc_accounts", func() error { return accountMux.Run(ctx) }))
	}

	lgr.Infow("created grpc subscription",
		"sources", len(cfg.Sources),
		"commitment", cfg.Commitment,
		"accountStream", streams.Accounts != nil)

	return streams, group, nil
}
