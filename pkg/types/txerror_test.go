package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransactionError(t *testing.T) {
	t.Run("unit variant", func(t *testing.T) {
		err7 := []byte{7, 0, 0, 0} // BlockhashNotFound
		out, err := DecodeTransactionError(err7)
		require.NoError(t, err)
		assert.Equal(t, TxErrBlockhashNotFound, out.Kind)
		assert.Nil(t, out.InstructionIndex)
		assert.Nil(t, out.Instruction)
		assert.Equal(t, "BlockhashNotFound", out.Error())
	})

	t.Run("instruction error with custom code", func(t *testing.T) {
		// InstructionError(2, Custom(6001))
		raw := []byte{8, 0, 0, 0, 2, 25, 0, 0, 0, 0x71, 0x17, 0, 0}
		out, err := DecodeTransactionError(raw)
		require.NoError(t, err)
		assert.Equal(t, TxErrInstructionError, out.Kind)
		require.NotNil(t, out.InstructionIndex)
		assert.Equal(t, uint8(2), *out.InstructionIndex)
		require.NotNil(t, out.Instruction)
		assert.Equal(t, InsErrCustom, out.Instruction.Kind)
		require.NotNil(t, out.Instruction.Custom)
		assert.Equal(t, uint32(6001), *out.Instruction.Custom)
		assert.Equal(t, "InstructionError(2, Custom(6001))", out.Error())
	})

	t.Run("instruction error without payload", func(t *testing.T) {
		// InstructionError(0, InvalidArgument)
		raw := []byte{8, 0, 0, 0, 0, 1, 0, 0, 0}
		out, err := DecodeTransactionError(raw)
		require.NoError(t, err)
		require.NotNil(t, out.Instruction)
		assert.Equal(t, InsErrInvalidArgument, out.Instruction.Kind)
		assert.Nil(t, out.Instruction.Custom)
	})

	t.Run("indexed variant", func(t *testing.T) {
		// DuplicateInstruction(3)
		raw := []byte{30, 0, 0, 0, 3}
		out, err := DecodeTransactionError(raw)
		require.NoError(t, err)
		assert.Equal(t, TxErrDuplicateInstruction, out.Kind)
		require.NotNil(t, out.InstructionIndex)
		assert.Equal(t, uint8(3), *out.InstructionIndex)
		assert.Equal(t, "DuplicateInstruction(3)", out.Error())
	})

	t.Run("truncated input fails", func(t *testing.T) {
		_, err := DecodeTransactionError([]byte{8, 0, 0})
		require.Error(t, err)

		_, err = DecodeTransactionError([]byte{8, 0, 0, 0, 1})
		require.Error(t, err)
	})

	t.Run("unknown tag fails", func(t *testing.T) {
		_, err := DecodeTransactionError([]byte{0xff, 0, 0, 0})
		require.Error(t, err)
	})
}
