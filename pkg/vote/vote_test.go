package vote

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tagData(tag instructionTag) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(tag))
	return data
}

func TestIsSimpleVote(t *testing.T) {
	simple := []instructionTag{
		TagVote, TagVoteSwitch,
		TagUpdateVoteState, TagUpdateVoteStateSwitch,
		TagCompactUpdateVoteState, TagCompactUpdateVoteStateSwitch,
		TagTowerSync, TagTowerSyncSwitch,
	}
	for _, tag := range simple {
		assert.True(t, IsSimpleVote(tagData(tag)), "tag %d", tag)
	}

	notSimple := []instructionTag{
		TagInitializeAccount, TagAuthorize, TagWithdraw,
		TagUpdateValidatorIdentity, TagUpdateCommission,
		TagAuthorizeChecked, TagAuthorizeWithSeed, TagAuthorizeCheckedWithSeed,
	}
	for _, tag := range notSimple {
		assert.False(t, IsSimpleVote(tagData(tag)), "tag %d", tag)
	}

	// undecodable data is not a vote
	assert.False(t, IsSimpleVote(nil))
	assert.False(t, IsSimpleVote([]byte{2}))
	assert.False(t, IsSimpleVote(tagData(instructionTag(99))))
}
