// Package blocks turns raw geyser block updates into the canonical
// ProducedBlock model. Decoding is pure and synchronous: no I/O, no shared
// state, safe to run for unrelated blocks in parallel.
package blocks

import (
	"encoding/base64"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/Redacted-Capital/lite-rpc/pkg/fees"
	"github.com/Redacted-Capital/lite-rpc/pkg/geyser"
	"github.com/Redacted-Capital/lite-rpc/pkg/logger"
	"github.com/Redacted-Capital/lite-rpc/pkg/types"
	"github.com/Redacted-Capital/lite-rpc/pkg/vote"
)

const (
	signatureLength  = 64
	accountKeyLength = 32
	maxHeaderCount   = 255 // header counts are u8 on chain; wider is a wire violation
)

// Fatal-block errors. A block carrying any of these conditions is rejected
// whole: callers never receive a partially valid block.
var (
	ErrBlockHeightMissing       = errors.New("block update missing block_height")
	ErrBlockTimeMissing         = errors.New("block update missing block_time")
	ErrTransactionErrorEncoding = errors.New("malformed transaction error encoding")
)

// BudgetParser extracts compute-budget values from instruction data. Keyed by
// program id so the decoder core stays agnostic to the exact encodings.
type BudgetParser interface {
	Program() solana.PublicKey
	ParseUnitLimit(data []byte) (uint32, bool)
	ParseUnitPrice(data []byte) (uint64, bool)
	ParseDeprecatedRequestUnits(data []byte) (fees.RequestUnitsDeprecated, bool)
}

// VoteClassifier decides whether instruction data for its program casts a
// simple vote.
type VoteClassifier interface {
	Program() solana.PublicKey
	IsSimpleVote(data []byte) bool
}

type Decoder struct {
	lgr    logger.Logger
	budget BudgetParser
	votes  VoteClassifier
}

type Option func(*Decoder)

func WithBudgetParser(p BudgetParser) Option {
	return func(d *Decoder) { d.budget = p }
}

func WithVoteClassifier(c VoteClassifier) Option {
	return func(d *Decoder) { d.votes = c }
}

func NewDecoder(lgr logger.Logger, opts ...Option) *Decoder {
	d := &Decoder{
		lgr:    lgr,
		budget: fees.InstructionParser{},
		votes:  vote.Classifier{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode maps one raw block update to a canonical block. The commitment tag
// is asserted by the caller; it is carried through, not derived. Malformed
// transaction envelopes are dropped individually; a missing block height or
// time, or an undecodable transaction error, rejects the whole block.
func (d *Decoder) Decode(block *geyser.SubscribeUpdateBlock, commitment rpc.CommitmentType) (*types.ProducedBlock, error) {
	if block.BlockHeight == nil {
		return nil, errors.Wrapf(ErrBlockHeightMissing, "slot %d", block.Slot)
	}
	if block.BlockTime == nil {
		return nil, errors.Wrapf(ErrBlockTimeMissing, "slot %d", block.Slot)
	}

	txs := make([]types.TransactionInfo, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		info, ok, err := d.decodeTransaction(tx, block)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		txs = append(txs, info)
	}

	rewards := decodeRewards(block.Rewards)

	return &types.ProducedBlock{
		Slot:              block.Slot,
		ParentSlot:        block.ParentSlot,
		Blockhash:         block.Blockhash,
		PreviousBlockhash: block.ParentBlockhash,
		BlockHeight:       block.BlockHeight.BlockHeight,
		BlockTime:         uint64(block.BlockTime.Timestamp),
		Commitment:        commitment,
		LeaderID:          leaderID(rewards),
		Transactions:      txs,
		Rewards:           rewards,
	}, nil
}

// decodeTransaction returns ok=false for envelopes dropped under the
// acceptable-loss policy, and a non-nil error only for conditions fatal to
// the whole block.
func (d *Decoder) decodeTransaction(tx *geyser.SubscribeUpdateTransactionInfo, block *geyser.SubscribeUpdateBlock) (types.TransactionInfo, bool, error) {
	out := types.TransactionInfo{}

	if tx == nil || tx.Meta == nil || tx.Transaction == nil ||
		tx.Transaction.Message == nil || tx.Transaction.Message.Header == nil {
		d.lgr.Debugw("dropping incomplete transaction envelope",
			"slot", block.Slot, "blockhash", block.Blockhash)
		return out, false, nil
	}
	raw := tx.Transaction
	rawMsg := raw.Message
	rawHeader := rawMsg.Header

	// The first signature identifies the transaction. If it fails structural
	// validation the whole transaction is dropped: reporting a later
	// signature in its place would mislabel the transaction.
	if len(raw.Signatures) == 0 || len(raw.Signatures[0]) != signatureLength {
		d.lgr.Warnw("dropping transaction with missing or malformed first signature",
			"slot", block.Slot, "blockhash", block.Blockhash)
		return out, false, nil
	}
	signature := solana.SignatureFromBytes(raw.Signatures[0])
	for _, sig := range raw.Signatures[1:] {
		if len(sig) != signatureLength {
			d.lgr.Warnw("failed to read signature from transaction - skipping",
				"slot", block.Slot, "blockhash", block.Blockhash, "firstSignature", signature)
		}
	}

	if rawHeader.NumRequiredSignatures > maxHeaderCount ||
		rawHeader.NumReadonlySignedAccounts > maxHeaderCount ||
		rawHeader.NumReadonlyUnsignedAccounts > maxHeaderCount {
		d.lgr.Warnw("dropping transaction with out-of-range header counts",
			"slot", block.Slot, "signature", signature)
		return out, false, nil
	}
	header := solana.MessageHeader{
		NumRequiredSignatures:       uint8(rawHeader.NumRequiredSignatures),
		NumReadonlySignedAccounts:   uint8(rawHeader.NumReadonlySignedAccounts),
		NumReadonlyUnsignedAccounts: uint8(rawHeader.NumReadonlyUnsignedAccounts),
	}

	accountKeys := make([]solana.PublicKey, len(rawMsg.AccountKeys))
	for i, key := range rawMsg.AccountKeys {
		accountKeys[i] = d.accountKey(key, block, signature)
	}

	instructions := make([]solana.CompiledInstruction, 0, len(rawMsg.Instructions))
	for _, ix := range rawMsg.Instructions {
		if ix == nil || ix.ProgramIDIndex > maxHeaderCount {
			d.lgr.Warnw("dropping transaction with malformed instruction",
				"slot", block.Slot, "signature", signature)
			return out, false, nil
		}
		accounts := make([]uint16, len(ix.Accounts))
		for j, a := range ix.Accounts {
			accounts[j] = uint16(a)
		}
		instructions = append(instructions, solana.CompiledInstruction{
			ProgramIDIndex: uint16(ix.ProgramIDIndex),
			Accounts:       accounts,
			Data:           ix.Data,
		})
	}

	lookups := make([]solana.MessageAddressTableLookup, 0, len(rawMsg.AddressTableLookups))
	tableKeys := make([]solana.PublicKey, 0, len(rawMsg.AddressTableLookups))
	for _, table := range rawMsg.AddressTableLookups {
		if table == nil {
			continue
		}
		key := d.accountKey(table.AccountKey, block, signature)
		lookups = append(lookups, solana.MessageAddressTableLookup{
			AccountKey:      key,
			WritableIndexes: table.WritableIndexes,
			ReadonlyIndexes: table.ReadonlyIndexes,
		})
		tableKeys = append(tableKeys, key)
	}

	msg := solana.Message{
		Header:              header,
		AccountKeys:         accountKeys,
		RecentBlockhash:     solana.HashFromBytes(rawMsg.RecentBlockhash),
		Instructions:        instructions,
		AddressTableLookups: lookups,
	}
	msg.SetVersion(solana.MessageVersionV0)

	// re-serialize from the reconstructed message, never from the raw bytes
	serialized, err := msg.MarshalBinary()
	if err != nil {
		d.lgr.Warnw("dropping transaction that failed message serialization",
			"slot", block.Slot, "signature", signature, "err", err)
		return out, false, nil
	}

	var txErr *types.TransactionError
	if tx.Meta.Err != nil {
		txErr, err = types.DecodeTransactionError(tx.Meta.Err.Err)
		if err != nil {
			// producer/consumer serialization mismatch, not bad user data
			return out, false, errors.Wrapf(ErrTransactionErrorEncoding,
				"slot %d signature %s: %v", block.Slot, signature, err)
		}
	}

	cuRequested, prioritizationFees := d.extractComputeBudget(accountKeys, instructions)

	readable, writable := partitionAccounts(header, accountKeys)

	out = types.TransactionInfo{
		Signature:           signature.String(),
		IsVote:              d.isSimpleVote(accountKeys, instructions),
		Err:                 txErr,
		CURequested:         cuRequested,
		PrioritizationFees:  prioritizationFees,
		CUConsumed:          copyUint64(tx.Meta.ComputeUnitsConsumed),
		RecentBlockhash:     msg.RecentBlockhash.String(),
		Message:             base64.StdEncoding.EncodeToString(serialized),
		ReadableAccounts:    readable,
		WritableAccounts:    writable,
		AddressLookupTables: tableKeys,
	}
	return out, true, nil
}

// accountKey converts a raw 32-byte key, degrading malformed keys to the
// all-zero default instead of failing the transaction.
func (d *Decoder) accountKey(raw []byte, block *geyser.SubscribeUpdateBlock, signature solana.Signature) solana.PublicKey {
	if len(raw) != accountKeyLength {
		d.lgr.Warnw("malformed account key, substituting default",
			"slot", block.Slot, "signature", signature, "len", len(raw))
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(raw)
}

// extractComputeBudget scans instructions targeting the compute-budget
// program. Precedence: the current SetComputeUnitLimit/SetComputeUnitPrice
// instructions win; the deprecated RequestUnits instruction supplies units
// and a derived legacy fee only when no current instruction is present.
func (d *Decoder) extractComputeBudget(accountKeys []solana.PublicKey, instructions []solana.CompiledInstruction) (*uint32, *uint64) {
	program := d.budget.Program()

	var unitLimit *uint32
	var unitPrice *uint64
	var legacy *fees.RequestUnitsDeprecated
	for _, ix := range instructions {
		if int(ix.ProgramIDIndex) >= len(accountKeys) ||
			!accountKeys[ix.ProgramIDIndex].Equals(program) {
			continue
		}
		data := []byte(ix.Data)
		if unitLimit == nil {
			if v, ok := d.budget.ParseUnitLimit(data); ok {
				limit := v
				unitLimit = &limit
				continue
			}
		}
		if unitPrice == nil {
			if v, ok := d.budget.ParseUnitPrice(data); ok {
				price := v
				unitPrice = &price
				continue
			}
		}
		if legacy == nil {
			if v, ok := d.budget.ParseDeprecatedRequestUnits(data); ok {
				req := v
				legacy = &req
			}
		}
	}

	cuRequested := unitLimit
	if cuRequested == nil && legacy != nil {
		cuRequested = &legacy.Units
	}
	prioritizationFees := unitPrice
	if prioritizationFees == nil && legacy != nil {
		if fee, ok := legacy.LegacyPrioritizationFee(); ok {
			derived := uint64(fee)
			prioritizationFees = &derived
		}
	}
	return cuRequested, prioritizationFees
}

func (d *Decoder) isSimpleVote(accountKeys []solana.PublicKey, instructions []solana.CompiledInstruction) bool {
	program := d.votes.Program()
	for _, ix := range instructions {
		if int(ix.ProgramIDIndex) >= len(accountKeys) ||
			!accountKeys[ix.ProgramIDIndex].Equals(program) {
			continue
		}
		if d.votes.IsSimpleVote(ix.Data) {
			return true
		}
	}
	return false
}

// partitionAccounts splits every statically referenced key into exactly one
// of the readable or writable sets, using the header-declared signer and
// readonly counts.
func partitionAccounts(header solana.MessageHeader, accountKeys []solana.PublicKey) (readable, writable []solana.PublicKey) {
	readable = make([]solana.PublicKey, 0, len(accountKeys))
	writable = make([]solana.PublicKey, 0, len(accountKeys))
	for i, key := range accountKeys {
		if isWritableIndex(header, len(accountKeys), i) {
			writable = append(writable, key)
		} else {
			readable = append(readable, key)
		}
	}
	return readable, writable
}

func isWritableIndex(header solana.MessageHeader, numKeys, index int) bool {
	numSigned := int(header.NumRequiredSignatures)
	if index < numSigned {
		return index < numSigned-int(header.NumReadonlySignedAccounts)
	}
	return index < numKeys-int(header.NumReadonlyUnsignedAccounts)
}

func decodeRewards(raw *geyser.Rewards) []types.Reward {
	if raw == nil {
		return nil
	}
	rewards := make([]types.Reward, 0, len(raw.Rewards))
	for _, reward := range raw.Rewards {
		if reward == nil {
			continue
		}
		rewards = append(rewards, types.Reward{
			Pubkey:      reward.Pubkey,
			Lamports:    reward.Lamports,
			PostBalance: reward.PostBalance,
			RewardType:  rewardType(reward.RewardType),
			Commission:  nil, // populated later by collaborators
		})
	}
	return rewards
}

func rewardType(wire int32) *types.RewardType {
	var rt types.RewardType
	switch wire {
	case geyser.RewardTypeFee:
		rt = types.RewardTypeFee
	case geyser.RewardTypeRent:
		rt = types.RewardTypeRent
	case geyser.RewardTypeStaking:
		rt = types.RewardTypeStaking
	case geyser.RewardTypeVoting:
		rt = types.RewardTypeVoting
	default:
		return nil
	}
	return &rt
}

// leaderID scans for the first fee reward; its recipient produced the block.
// Heuristic: absence of a fee reward leaves the leader unset.
func leaderID(rewards []types.Reward) string {
	for _, reward := range rewards {
		if reward.RewardType != nil && *reward.RewardType == types.RewardTypeFee {
			return reward.Pubkey
		}
	}
	return ""
}

func copyUint64(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
