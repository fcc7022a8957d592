package fees

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/exp/constraints"
)

// https://github.com/solana-labs/solana/blob/60858d043ca612334de300805d93ea3014e8ab37/sdk/src/compute_budget.rs#L25
const (
	// deprecated on-chain, but still observed in replayed history
	InstructionRequestUnitsDeprecated computeBudgetInstruction = iota

	// Request a specific transaction-wide program heap region size in bytes.
	InstructionRequestHeapFrame

	// Set a specific compute unit limit that the transaction is allowed to consume.
	InstructionSetComputeUnitLimit

	// Set a compute unit price in "micro-lamports" to pay a higher transaction
	// fee for higher transaction prioritization.
	InstructionSetComputeUnitPrice
)

var (
	ComputeBudgetProgram = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)

type computeBudgetInstruction uint8

func (ins computeBudgetInstruction) String() (out string) {
	out = "INVALID"
	switch ins {
	case InstructionRequestUnitsDeprecated:
		out = "RequestUnitsDeprecated"
	case InstructionRequestHeapFrame:
		out = "RequestHeapFrame"
	case InstructionSetComputeUnitLimit:
		out = "SetComputeUnitLimit"
	case InstructionSetComputeUnitPrice:
		out = "SetComputeUnitPrice"
	}
	return out
}

// https://docs.solana.com/developing/programming-model/runtime
type ComputeUnitPrice uint64

// simple encoding into program expected format
func (val ComputeUnitPrice) Data() ([]byte, error) {
	return encode(InstructionSetComputeUnitPrice, val)
}

type ComputeUnitLimit uint32

func (val ComputeUnitLimit) Data() ([]byte, error) {
	return encode(InstructionSetComputeUnitLimit, val)
}

// RequestUnitsDeprecated carries both fields of the legacy instruction: the
// requested unit count and a flat additional fee in lamports.
type RequestUnitsDeprecated struct {
	Units         uint32
	AdditionalFee uint32
}

func (val RequestUnitsDeprecated) Data() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := buf.WriteByte(uint8(InstructionRequestUnitsDeprecated)); err != nil {
		return []byte{}, err
	}
	if err := binary.Write(buf, binary.LittleEndian, val.Units); err != nil {
		return []byte{}, err
	}
	if err := binary.Write(buf, binary.LittleEndian, val.AdditionalFee); err != nil {
		return []byte{}, err
	}
	return buf.Bytes(), nil
}

// LegacyPrioritizationFee converts the flat additional fee into an equivalent
// per-unit micro-lamport price: (units * 1000) / additional_fee, truncating
// integer division. Reports false when no additional fee was attached.
func (val RequestUnitsDeprecated) LegacyPrioritizationFee() (ComputeUnitPrice, bool) {
	if val.AdditionalFee == 0 {
		return 0, false
	}
	return ComputeUnitPrice(uint64(val.Units) * 1000 / uint64(val.AdditionalFee)), true
}

// encode combines the identifier and little encoded value into a byte array
func encode[V constraints.Unsigned](identifier computeBudgetInstruction, val V) ([]byte, error) {
	buf := new(bytes.Buffer)

	// encode method identifier
	if err := buf.WriteByte(uint8(identifier)); err != nil {
		return []byte{}, err
	}

	// encode value
	if err := binary.Write(buf, binary.LittleEndian, val); err != nil {
		return []byte{}, err
	}

	return buf.Bytes(), nil
}

func ParseComputeUnitPrice(data []byte) (ComputeUnitPrice, error) {
	v, err := parse(InstructionSetComputeUnitPrice, data, binary.LittleEndian.Uint64)
	return ComputeUnitPrice(v), err
}

func ParseComputeUnitLimit(data []byte) (ComputeUnitLimit, error) {
	v, err := parse(InstructionSetComputeUnitLimit, data, binary.LittleEndian.Uint32)
	return ComputeUnitLimit(v), err
}

func ParseRequestUnitsDeprecated(data []byte) (RequestUnitsDeprecated, error) {
	out := RequestUnitsDeprecated{}
	if len(data) != 9 { // instruction byte + two uint32
		return out, fmt.Errorf("invalid length: %d", len(data))
	}
	if data[0] != uint8(InstructionRequestUnitsDeprecated) {
		return out, fmt.Errorf("not %s identifier: %d", InstructionRequestUnitsDeprecated, data[0])
	}
	out.Units = binary.LittleEndian.Uint32(data[1:5])
	out.AdditionalFee = binary.LittleEndian.Uint32(data[5:9])
	return out, nil
}

// parse implements instruction data parsing for the provided instruction type and specified decoder
func parse[V constraints.Unsigned](ins computeBudgetInstruction, data []byte, decoder func([]byte) V) (V, error) {
	if len(data) != (1 + binary.Size(V(0))) { // instruction byte + uintXXX length
		return 0, fmt.Errorf("invalid length: %d", len(data))
	}

	// validate instruction identifier
	if data[0] != uint8(ins) {
		return 0, fmt.Errorf("not %s identifier: %d", ins, data[0])
	}

	// guarantees length to fit the binary decoder
	return decoder(data[1:]), nil
}

// InstructionParser is the compute-budget extraction strategy plugged into
// the block decoder.
type InstructionParser struct{}

func (InstructionParser) Program() solana.PublicKey { return ComputeBudgetProgram }

func (InstructionParser) ParseUnitLimit(data []byte) (uint32, bool) {
	v, err := ParseComputeUnitLimit(data)
	return uint32(v), err == nil
}

func (InstructionParser) ParseUnitPrice(data []byte) (uint64, bool) {
	v, err := ParseComputeUnitPrice(data)
	return uint64(v), err == nil
}

func (InstructionParser) ParseDeprecatedRequestUnits(data []byte) (RequestUnitsDeprecated, bool) {
	v, err := ParseRequestUnitsDeprecated(data)
	return v, err == nil
}
