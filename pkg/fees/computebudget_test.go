package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComputeUnitPrice(t *testing.T) {
	t.Parallel()

	data, err := ComputeUnitPrice(1_000_000).Data()
	require.NoError(t, err)
	require.Len(t, data, 9)

	v, err := ParseComputeUnitPrice(data)
	require.NoError(t, err)
	assert.Equal(t, ComputeUnitPrice(1_000_000), v)

	// wrong identifier
	limitData, err := ComputeUnitLimit(100).Data()
	require.NoError(t, err)
	_, err = ParseComputeUnitPrice(limitData)
	require.Error(t, err)

	// wrong length
	_, err = ParseComputeUnitPrice(data[:5])
	require.Error(t, err)
}

func TestParseComputeUnitLimit(t *testing.T) {
	t.Parallel()

	data, err := ComputeUnitLimit(200_000).Data()
	require.NoError(t, err)
	require.Len(t, data, 5)

	v, err := ParseComputeUnitLimit(data)
	require.NoError(t, err)
	assert.Equal(t, ComputeUnitLimit(200_000), v)

	_, err = ParseComputeUnitLimit([]byte{uint8(InstructionSetComputeUnitPrice), 0, 0, 0, 0})
	require.Error(t, err)
}

func TestParseRequestUnitsDeprecated(t *testing.T) {
	t.Parallel()

	data, err := RequestUnitsDeprecated{Units: 1000, AdditionalFee: 500}.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)

	v, err := ParseRequestUnitsDeprecated(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), v.Units)
	assert.Equal(t, uint32(500), v.AdditionalFee)

	_, err = ParseRequestUnitsDeprecated(data[:8])
	require.Error(t, err)

	bad := append([]byte{}, data...)
	bad[0] = uint8(InstructionSetComputeUnitLimit)
	_, err = ParseRequestUnitsDeprecated(bad)
	require.Error(t, err)
}

func TestLegacyPrioritizationFee(t *testing.T) {
	t.Parallel()

	fee, ok := RequestUnitsDeprecated{Units: 1000, AdditionalFee: 500}.LegacyPrioritizationFee()
	assert.True(t, ok)
	assert.Equal(t, ComputeUnitPrice(2000), fee)

	// truncating division
	fee, ok = RequestUnitsDeprecated{Units: 1, AdditionalFee: 3}.LegacyPrioritizationFee()
	assert.True(t, ok)
	assert.Equal(t, ComputeUnitPrice(333), fee)

	// no additional fee attached
	_, ok = RequestUnitsDeprecated{Units: 1000}.LegacyPrioritizationFee()
	assert.False(t, ok)
}
