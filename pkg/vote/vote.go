package vote

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var (
	Program = solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
)

// instructionTag is the bincode variant index of VoteInstruction.
// https://github.com/solana-labs/solana/blob/master/sdk/program/src/vote/instruction.rs
type instructionTag uint32

const (
	TagInitializeAccount instructionTag = iota
	TagAuthorize
	TagVote
	TagWithdraw
	TagUpdateValidatorIdentity
	TagUpdateCommission
	TagVoteSwitch
	TagAuthorizeChecked
	TagUpdateVoteState
	TagUpdateVoteStateSwitch
	TagAuthorizeWithSeed
	TagAuthorizeCheckedWithSeed
	TagCompactUpdateVoteState
	TagCompactUpdateVoteStateSwitch
	TagTowerSync
	TagTowerSyncSwitch
)

// IsSimpleVote reports whether the instruction data decodes as one of the
// vote-program variants that casts a vote. Undecodable data is simply not a
// vote, never an error.
func IsSimpleVote(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	switch instructionTag(binary.LittleEndian.Uint32(data[:4])) {
	case TagVote, TagVoteSwitch,
		TagUpdateVoteState, TagUpdateVoteStateSwitch,
		TagCompactUpdateVoteState, TagCompactUpdateVoteStateSwitch,
		TagTowerSync, TagTowerSyncSwitch:
		return true
	default:
		return false
	}
}

// Classifier is the vote classification strategy plugged into the block
// decoder.
type Classifier struct{}

func (Classifier) Program() solana.PublicKey   { return Program }
func (Classifier) IsSimpleVote(data []byte) bool { return IsSimpleVote(data) }
