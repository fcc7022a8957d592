// Package grpcmux merges redundant geyser sources into single logical
// streams. Several upstream endpoints subscribe to the same data; the first
// source to deliver a slot wins and the rest are dropped, so downstream
// consumers see each block exactly once regardless of how many sources back
// the stream.
package grpcmux

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/sync/errgroup"

	"github.com/Redacted-Capital/lite-rpc/pkg/blocks"
	"github.com/Redacted-Capital/lite-rpc/pkg/broadcast"
	"github.com/Redacted-Capital/lite-rpc/pkg/geyser"
	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
	"github.com/Redacted-Capital/lite-rpc/pkg/types"
)

const (
	// dedupWindow bounds the number of slots remembered for first-wins
	// deduplication. Slots older than the window behind the highest seen
	// slot are treated as already delivered.
	dedupWindow = 1024

	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// slotDeduper implements first-source-wins deduplication over a sliding
// window of slots.
type slotDeduper struct {
	mu      sync.Mutex
	seen    map[uint64]struct{}
	highest uint64
}

func newSlotDeduper() *slotDeduper {
	return &slotDeduper{seen: make(map[uint64]struct{})}
}

// first reports whether slot has not been delivered yet and marks it
// delivered. Slots that fell out of the window are reported as duplicates.
func (d *slotDeduper) first(slot uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[slot]; ok {
		return false
	}
	if d.highest >= dedupWindow && slot <= d.highest-dedupWindow {
		return false
	}
	d.seen[slot] = struct{}{}
	if slot > d.highest {
		d.highest = slot
	}
	if len(d.seen) > dedupWindow {
		for s := range d.seen {
			if d.highest >= dedupWindow && s <= d.highest-dedupWindow {
				delete(d.seen, s)
			}
		}
	}
	return true
}

// slotGate forwards only monotonically increasing slots.
type slotGate struct {
	last atomic.Uint64
}

func (g *slotGate) advance(slot uint64) bool {
	for {
		last := g.last.Load()
		if slot <= last {
			return false
		}
		if g.last.CompareAndSwap(last, slot) {
			return true
		}
	}
}

// BlockMultiplexer streams full blocks from every configured source, decodes
// them and publishes each slot exactly once.
type BlockMultiplexer struct {
	lgr        logger.Logger
	sources    []geyser.SourceConfig
	commitment rpc.CommitmentType
	decoder    *blocks.Decoder
	out        *broadcast.Channel[*types.ProducedBlock]
	dedup      *slotDeduper
}

func NewBlockMultiplexer(lgr logger.Logger, sources []geyser.SourceConfig, commitment rpc.CommitmentType, decoder *blocks.Decoder, out *broadcast.Channel[*types.ProducedBlock]) *BlockMultiplexer {
	return &BlockMultiplexer{
		lgr:        logger.Named(lgr, "BlockMultiplexer"),
		sources:    sources,
		commitment: commitment,
		decoder:    decoder,
		out:        out,
		dedup:      newSlotDeduper(),
	}
}

// Run streams until ctx is cancelled. Individual source failures trigger a
// reconnect with backoff; they never take the multiplexer down.
func (m *BlockMultiplexer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range m.sources {
		cfg := cfg
		g.Go(func() error {
			return runSource(ctx, m.lgr, cfg, "blocks",
				geyser.BlocksSubscribeRequest(geyser.CommitmentLevelOf(m.commitment)),
				m.handleUpdate)
		})
	}
	return g.Wait()
}

func (m *BlockMultiplexer) handleUpdate(update *geyser.SubscribeUpdate, source string) {
	if update.Block == nil {
		return
	}
	blockUpdatesTotal.WithLabelValues(source).Inc()
	m.handleBlock(update.Block, source)
}

func (m *BlockMultiplexer) handleBlock(block *geyser.SubscribeUpdateBlock, source string) {
	if !m.dedup.first(block.Slot) {
		blocksDeduplicatedTotal.Inc()
		return
	}
	produced, err := m.decoder.Decode(block, m.commitment)
	if err != nil {
		blockDecodeFailuresTotal.WithLabelValues(source).Inc()
		m.lgr.Errorw("failed to decode block update",
			"source", source, "slot", block.Slot, "err", err)
		return
	}
	m.out.Send(produced)
}

// SlotMultiplexer streams slot status updates from every source and forwards
// each processed slot once, in increasing order.
type SlotMultiplexer struct {
	lgr     logger.Logger
	sources []geyser.SourceConfig
	out     *broadcast.Channel[types.SlotNotification]
	gate    slotGate
}

func NewSlotMultiplexer(lgr logger.Logger, sources []geyser.SourceConfig, out *broadcast.Channel[types.SlotNotification]) *SlotMultiplexer {
	return &SlotMultiplexer{
		lgr:     logger.Named(lgr, "SlotMultiplexer"),
		sources: sources,
		out:     out,
	}
}

func (m *SlotMultiplexer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range m.sources {
		cfg := cfg
		g.Go(func() error {
			return runSource(ctx, m.lgr, cfg, "slots",
				geyser.SlotsSubscribeRequest(geyser.CommitmentProcessed),
				m.handleUpdate)
		})
	}
	return g.Wait()
}

func (m *SlotMultiplexer) handleUpdate(update *geyser.SubscribeUpdate, source string) {
	if update.Slot == nil {
		return
	}
	slotUpdatesTotal.WithLabelValues(source).Inc()
	m.handleSlot(update.Slot.Slot)
}

func (m *SlotMultiplexer) handleSlot(slot uint64) {
	if !m.gate.advance(slot) {
		return
	}
	m.out.Send(types.SlotNotification{
		ProcessedSlot:          slot,
		EstimatedProcessedSlot: slot,
	})
}

// AccountMultiplexer streams filtered account updates from every source.
// Account updates carry a write version, so duplicates across sources are
// left for consumers to resolve; no slot-level dedup applies here.
type AccountMultiplexer struct {
	lgr     logger.Logger
	sources []geyser.SourceConfig
	filters geyser.AccountFilters
	out     *broadcast.Channel[types.AccountUpdate]
}

func NewAccountMultiplexer(lgr logger.Logger, sources []geyser.SourceConfig, filters geyser.AccountFilters, out *broadcast.Channel[types.AccountUpdate]) *AccountMultiplexer {
	return &AccountMultiplexer{
		lgr:     logger.Named(lgr, "AccountMultiplexer"),
		sources: sources,
		filters: filters,
		out:     out,
	}
}

func (m *AccountMultiplexer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range m.sources {
		cfg := cfg
		g.Go(func() error {
			return runSource(ctx, m.lgr, cfg, "accounts",
				geyser.AccountsSubscribeRequest(m.filters),
				m.handleUpdate)
		})
	}
	return g.Wait()
}

func (m *AccountMultiplexer) handleUpdate(update *geyser.SubscribeUpdate, source string) {
	if update.Account == nil {
		return
	}
	accountUpdatesTotal.WithLabelValues(source).Inc()
	converted, ok := convertAccount(update.Account)
	if !ok {
		m.lgr.Warnw("dropping malformed account update",
			"source", source, "slot", update.Account.Slot)
		return
	}
	m.out.Send(converted)
}

func convertAccount(update *geyser.SubscribeUpdateAccount) (types.AccountUpdate, bool) {
	info := update.Account
	if info == nil || len(info.Pubkey) != solana.PublicKeyLength || len(info.Owner) != solana.PublicKeyLength {
		return types.AccountUpdate{}, false
	}
	return types.AccountUpdate{
		Slot:         update.Slot,
		Pubkey:       solana.PublicKeyFromBytes(info.Pubkey),
		Owner:        solana.PublicKeyFromBytes(info.Owner),
		Lamports:     info.Lamports,
		Executable:   info.Executable,
		RentEpoch:    info.RentEpoch,
		Data:         info.Data,
		WriteVersion: info.WriteVersion,
	}, true
}

// runSource keeps one subscription alive: dial, subscribe, pump updates, and
// on any failure back off and reconnect. Returns only when ctx ends.
func runSource(ctx context.Context, lgr logger.Logger, cfg geyser.SourceConfig, stream string, req *geyser.SubscribeRequest, handle func(*geyser.SubscribeUpdate, string)) error {
	delay := reconnectBaseDelay
	for {
		err := pumpSource(ctx, lgr, cfg, req, func(update *geyser.SubscribeUpdate) {
			delay = reconnectBaseDelay
			handle(update, cfg.Name)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sourceReconnectsTotal.WithLabelValues(cfg.Name, stream).Inc()
		lgr.Warnw("source stream failed, reconnecting",
			"source", cfg.Name, "stream", stream, "delay", delay, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

func pumpSource(ctx context.Context, lgr logger.Logger, cfg geyser.SourceConfig, req *geyser.SubscribeRequest, handle func(*geyser.SubscribeUpdate)) error {
	client, err := geyser.Dial(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer client.Close()

	stream, err := client.Subscribe(ctx, req)
	if err != nil {
		return err
	}
	for {
		update, err := stream.Recv()
		if err != nil {
			return err
		}
		handle(update)
	}
}
