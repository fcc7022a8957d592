package grpcmux

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpcmux_block_updates_total",
		Help: "Block updates received per geyser source, before deduplication",
	}, []string{"source"})

	blocksDeduplicatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grpcmux_blocks_deduplicated_total",
		Help: "Block updates dropped because another source delivered the slot first",
	})

	blockDecodeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpcmux_block_decode_failures_total",
		Help: "Block updates that failed canonical decoding",
	}, []string{"source"})

	slotUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpcmux_slot_updates_total",
		Help: "Slot updates received per geyser source",
	}, []string{"source"})

	accountUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpcmux_account_updates_total",
		Help: "Account updates received per geyser source",
	}, []string{"source"})

	sourceReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpcmux_source_reconnects_total",
		Help: "Stream reconnect attempts per geyser source and stream kind",
	}, []string{"source", "stream"})
)
