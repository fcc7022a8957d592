// Package rpcpolling fills the gaps the geyser streams leave open: cluster
// topology and vote account state are only available through the JSON-RPC
// surface, so they are polled on fixed intervals and fanned out on broadcast
// channels next to the streamed data.
package rpcpolling

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Redacted-Capital/lite-rpc/pkg/broadcast"
	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
)

const (
	DefaultClusterInfoInterval  = 600 * time.Second
	DefaultVoteAccountsInterval = 600 * time.Second

	requestTimeout = 30 * time.Second
)

var (
	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpcpolling_polls_total",
		Help: "Completed polls per kind",
	}, []string{"kind"})

	pollFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpcpolling_poll_failures_total",
		Help: "Failed polls per kind",
	}, []string{"kind"})
)

// Client is the JSON-RPC subset the pollers consume; satisfied by *rpc.Client.
type Client interface {
	GetClusterNodes(ctx context.Context) ([]*rpc.GetClusterNodesResult, error)
	GetVoteAccounts(ctx context.Context, opts *rpc.GetVoteAccountsOpts) (*rpc.GetVoteAccountsResult, error)
}

type Config struct {
	// ClusterInfoInterval is the gap between cluster node polls.
	// Zero means DefaultClusterInfoInterval.
	ClusterInfoInterval time.Duration
	// VoteAccountsInterval is the gap between vote account polls.
	// Zero means DefaultVoteAccountsInterval.
	VoteAccountsInterval time.Duration
}

func (c Config) clusterInfoInterval() time.Duration {
	if c.ClusterInfoInterval > 0 {
		return c.ClusterInfoInterval
	}
	return DefaultClusterInfoInterval
}

func (c Config) voteAccountsInterval() time.Duration {
	if c.VoteAccountsInterval > 0 {
		return c.VoteAccountsInterval
	}
	return DefaultVoteAccountsInterval
}

// Poller owns both polling loops. Each loop polls once immediately, then on
// its interval; failures are logged and counted, never fatal.
type Poller struct {
	lgr          logger.Logger
	client       Client
	cfg          Config
	clusterInfo  *broadcast.Channel[[]*rpc.GetClusterNodesResult]
	voteAccounts *broadcast.Channel[*rpc.GetVoteAccountsResult]
}

func New(lgr logger.Logger, client Client, cfg Config,
	clusterInfo *broadcast.Channel[[]*rpc.GetClusterNodesResult],
	voteAccounts *broadcast.Channel[*rpc.GetVoteAccountsResult],
) *Poller {
	return &Poller{
		lgr:          logger.Named(lgr, "RPCPoller"),
		client:       client,
		cfg:          cfg,
		clusterInfo:  clusterInfo,
		voteAccounts: voteAccounts,
	}
}

// PollClusterInfo runs until ctx is cancelled.
func (p *Poller) PollClusterInfo(ctx context.Context) error {
	return p.run(ctx, "cluster_info", p.cfg.clusterInfoInterval(), p.pollClusterInfoOnce)
}

// PollVoteAccounts runs until ctx is cancelled.
func (p *Poller) PollVoteAccounts(ctx context.Context) error {
	return p.run(ctx, "vote_accounts", p.cfg.voteAccountsInterval(), p.pollVoteAccountsOnce)
}

func (p *Poller) run(ctx context.Context, kind string, interval time.Duration, poll func(context.Context) error) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		if err := poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			pollFailuresTotal.WithLabelValues(kind).Inc()
			p.lgr.Warnw("poll failed", "kind", kind, "err", err)
		} else {
			pollsTotal.WithLabelValues(kind).Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (p *Poller) pollClusterInfoOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	nodes, err := p.client.GetClusterNodes(ctx)
	if err != nil {
		return err
	}
	p.lgr.Debugw("polled cluster nodes", "count", len(nodes))
	p.clusterInfo.Send(nodes)
	return nil
}

func (p *Poller) pollVoteAccountsOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	accounts, err := p.client.GetVoteAccounts(ctx, nil)
	if err != nil {
		return err
	}
	p.lgr.Debugw("polled vote accounts",
		"current", len(accounts.Current), "delinquent", len(accounts.Delinquent))
	p.voteAccounts.Send(accounts)
	return nil
}
