package geyser

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
)

// full blocks with transactions routinely exceed the 4MB grpc default
const maxRecvMsgSize = 64 << 20

const subscribeMethod = "/geyser.Geyser/Subscribe"

var subscribeStreamDesc = &grpc.StreamDesc{
	StreamName:    "Subscribe",
	ServerStreams: true,
	ClientStreams: true,
}

// Client is one geyser connection. It carries no reconnect logic of its own:
// the multiplexer treats a broken stream as a source failure and the
// supervising layer decides what to do.
type Client struct {
	cfg  SourceConfig
	conn *grpc.ClientConn
	lgr  logger.Logger
}

func Dial(ctx context.Context, cfg SourceConfig, lgr logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if cfg.InsecureConnection {
		creds = insecure.NewCredentials()
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, cfg.Endpoint,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvMsgSize)),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "dial geyser source %q at %s", cfg.Name, cfg.Endpoint)
	}

	return &Client{cfg: cfg, conn: conn, lgr: logger.With(lgr, "source", cfg.Name)}, nil
}

func (c *Client) Source() SourceConfig { return c.cfg }

func (c *Client) Close() error { return c.conn.Close() }

// Subscribe opens the bidirectional stream and sends the initial request.
// The returned stream lives until ctx is cancelled or the server goes away.
func (c *Client) Subscribe(ctx context.Context, req *SubscribeRequest) (*Stream, error) {
	if c.cfg.XToken != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-token", c.cfg.XToken)
	}

	cs, err := c.conn.NewStream(ctx, subscribeStreamDesc, subscribeMethod)
	if err != nil {
		return nil, errors.Wrapf(err, "open subscribe stream on %q", c.cfg.Name)
	}
	if err := cs.SendMsg(req); err != nil {
		return nil, errors.Wrapf(err, "send subscribe request on %q", c.cfg.Name)
	}
	return &Stream{cs: cs, receiveTimeout: c.cfg.ReceiveTimeout}, nil
}

type Stream struct {
	cs             grpc.ClientStream
	receiveTimeout time.Duration
}

// Recv blocks for the next update. When the source config carries a receive
// timeout, silence longer than that is reported as an error so the caller can
// fail the source over.
func (s *Stream) Recv() (*SubscribeUpdate, error) {
	type result struct {
		update *SubscribeUpdate
		err    error
	}

	if s.receiveTimeout <= 0 {
		update := new(SubscribeUpdate)
		if err := s.cs.RecvMsg(update); err != nil {
			return nil, err
		}
		return update, nil
	}

	resCh := make(chan result, 1)
	go func() {
		update := new(SubscribeUpdate)
		err := s.cs.RecvMsg(update)
		resCh <- result{update: update, err: err}
	}()

	timer := time.NewTimer(s.receiveTimeout)
	defer timer.Stop()
	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, res.err
		}
		return res.update, nil
	case <-timer.C:
		return nil, errors.Errorf("no update received within %s", s.receiveTimeout)
	}
}

// BlocksSubscribeRequest subscribes to full blocks (transactions included,
// account updates excluded) at the given commitment.
func BlocksSubscribeRequest(commitment CommitmentLevel) *SubscribeRequest {
	withTransactions := true
	withAccounts := false
	return &SubscribeRequest{
		Blocks: map[string]*SubscribeRequestFilterBlocks{
			"client": {
				IncludeTransactions: &withTransactions,
				IncludeAccounts:     &withAccounts,
			},
		},
		Commitment: &commitment,
	}
}

// SlotsSubscribeRequest subscribes to slot status updates at the given
// commitment.
func SlotsSubscribeRequest(commitment CommitmentLevel) *SubscribeRequest {
	filterByCommitment := true
	return &SubscribeRequest{
		Slots: map[string]*SubscribeRequestFilterSlots{
			"client": {FilterByCommitment: &filterByCommitment},
		},
		Commitment: &commitment,
	}
}

// AccountsSubscribeRequest subscribes to account changes matching the given
// filters at processed commitment.
func AccountsSubscribeRequest(filters AccountFilters) *SubscribeRequest {
	accounts := make(map[string]*SubscribeRequestFilterAccounts, len(filters))
	for i, f := range filters {
		accounts[fmt.Sprintf("filter-%d", i)] = &SubscribeRequestFilterAccounts{
			Account: f.Accounts,
			Owner:   f.Owners,
		}
	}
	commitment := CommitmentProcessed
	return &SubscribeRequest{
		Accounts:   accounts,
		Commitment: &commitment,
	}
}

// CommitmentLevelOf maps the rpc commitment tag onto the wire enum.
func CommitmentLevelOf(commitment rpc.CommitmentType) CommitmentLevel {
	switch commitment {
	case rpc.CommitmentFinalized:
		return CommitmentFinalized
	case rpc.CommitmentConfirmed:
		return CommitmentConfirmed
	default:
		return CommitmentProcessed
	}
}
