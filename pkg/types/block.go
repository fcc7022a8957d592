package types

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProducedBlock is the canonical, application-facing representation of one
// Solana block. BlockHeight and BlockTime are always set: a block missing
// either on the wire is rejected at decode time instead of being constructed.
type ProducedBlock struct {
	Slot              uint64
	ParentSlot        uint64
	Blockhash         string
	PreviousBlockhash string
	BlockHeight       uint64
	BlockTime         uint64 // unix seconds

	// Commitment is asserted by the caller that produced the block update;
	// it is not derivable from the wire data.
	Commitment rpc.CommitmentType

	// LeaderID is the first fee-reward recipient, or empty when the block
	// carries no fee reward. Heuristic, not a protocol guarantee.
	LeaderID string

	Transactions []TransactionInfo
	Rewards      []Reward // nil when the wire rewards wrapper is absent
}

// TransactionInfo is the canonical per-transaction view.
type TransactionInfo struct {
	Signature string
	IsVote    bool
	Err       *TransactionError

	CURequested        *uint32
	PrioritizationFees *uint64 // micro-lamports per compute unit
	CUConsumed         *uint64

	RecentBlockhash string
	// Message is the reconstructed versioned message, re-serialized and
	// base64 encoded. Round-trip stable with solana.Message.UnmarshalBase64.
	Message string

	ReadableAccounts []solana.PublicKey
	WritableAccounts []solana.PublicKey
	// AddressLookupTables lists the referenced table keys in message order;
	// the indexed addresses are not resolved at this stage.
	AddressLookupTables []solana.PublicKey
}

type RewardType int

const (
	RewardTypeFee RewardType = iota + 1
	RewardTypeRent
	RewardTypeStaking
	RewardTypeVoting
)

func (rt RewardType) String() string {
	switch rt {
	case RewardTypeFee:
		return "fee"
	case RewardTypeRent:
		return "rent"
	case RewardTypeStaking:
		return "staking"
	case RewardTypeVoting:
		return "voting"
	default:
		return "unknown"
	}
}

type Reward struct {
	Pubkey      string
	Lamports    int64
	PostBalance uint64
	RewardType  *RewardType // nil when the wire type is unspecified
	Commission  *uint8      // populated by later stages, never by the decoder
}

// SlotNotification is published for every processed slot observed on the
// multiplexed slot stream.
type SlotNotification struct {
	ProcessedSlot          uint64
	EstimatedProcessedSlot uint64
}

// AccountUpdate is one account change observed through the account stream.
type AccountUpdate struct {
	Slot         uint64
	Pubkey       solana.PublicKey
	Owner        solana.PublicKey
	Lamports     uint64
	Executable   bool
	RentEpoch    uint64
	Data         []byte
	WriteVersion uint64
}
