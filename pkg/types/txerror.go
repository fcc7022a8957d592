package types

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

// TransactionErrorKind mirrors the variant order of the runtime's
// TransactionError enum; the wire carries it bincode-encoded as a
// little-endian u32 tag followed by the variant payload.
// https://github.com/solana-labs/solana/blob/master/sdk/src/transaction/error.rs
type TransactionErrorKind uint32

const (
	TxErrAccountInUse TransactionErrorKind = iota
	TxErrAccountLoadedTwice
	TxErrAccountNotFound
	TxErrProgramAccountNotFound
	TxErrInsufficientFundsForFee
	TxErrInvalidAccountForFee
	TxErrAlreadyProcessed
	TxErrBlockhashNotFound
	TxErrInstructionError
	TxErrCallChainTooDeep
	TxErrMissingSignatureForFee
	TxErrInvalidAccountIndex
	TxErrSignatureFailure
	TxErrInvalidProgramForExecution
	TxErrSanitizeFailure
	TxErrClusterMaintenance
	TxErrAccountBorrowOutstanding
	TxErrWouldExceedMaxBlockCostLimit
	TxErrUnsupportedVersion
	TxErrInvalidWritableAccount
	TxErrWouldExceedMaxAccountCostLimit
	TxErrWouldExceedAccountDataBlockLimit
	TxErrTooManyAccountLocks
	TxErrAddressLookupTableNotFound
	TxErrInvalidAddressLookupTableOwner
	TxErrInvalidAddressLookupTableData
	TxErrInvalidAddressLookupTableIndex
	TxErrInvalidRentPayingAccount
	TxErrWouldExceedMaxVoteCostLimit
	TxErrWouldExceedAccountDataTotalLimit
	TxErrDuplicateInstruction
	TxErrInsufficientFundsForRent
	TxErrMaxLoadedAccountsDataSizeExceeded
	TxErrInvalidLoadedAccountsDataSizeLimit
	TxErrResanitizationNeeded
	TxErrProgramExecutionTemporarilyRestricted
	TxErrUnbalancedTransaction
)

var txErrNames = [...]string{
	"AccountInUse", "AccountLoadedTwice", "AccountNotFound",
	"ProgramAccountNotFound", "InsufficientFundsForFee", "InvalidAccountForFee",
	"AlreadyProcessed", "BlockhashNotFound", "InstructionError",
	"CallChainTooDeep", "MissingSignatureForFee", "InvalidAccountIndex",
	"SignatureFailure", "InvalidProgramForExecution", "SanitizeFailure",
	"ClusterMaintenance", "AccountBorrowOutstanding",
	"WouldExceedMaxBlockCostLimit", "UnsupportedVersion",
	"InvalidWritableAccount", "WouldExceedMaxAccountCostLimit",
	"WouldExceedAccountDataBlockLimit", "TooManyAccountLocks",
	"AddressLookupTableNotFound", "InvalidAddressLookupTableOwner",
	"InvalidAddressLookupTableData", "InvalidAddressLookupTableIndex",
	"InvalidRentPayingAccount", "WouldExceedMaxVoteCostLimit",
	"WouldExceedAccountDataTotalLimit", "DuplicateInstruction",
	"InsufficientFundsForRent", "MaxLoadedAccountsDataSizeExceeded",
	"InvalidLoadedAccountsDataSizeLimit", "ResanitizationNeeded",
	"ProgramExecutionTemporarilyRestricted", "UnbalancedTransaction",
}

func (k TransactionErrorKind) String() string {
	if int(k) < len(txErrNames) {
		return txErrNames[k]
	}
	return fmt.Sprintf("TransactionError(%d)", uint32(k))
}

// TransactionError is the structured form of a failed transaction's wire
// error. InstructionIndex and Instruction are set for the variants that
// carry them.
type TransactionError struct {
	Kind             TransactionErrorKind
	InstructionIndex *uint8
	Instruction      *InstructionError
}

func (e *TransactionError) Error() string {
	switch {
	case e.Kind == TxErrInstructionError && e.Instruction != nil && e.InstructionIndex != nil:
		return fmt.Sprintf("InstructionError(%d, %s)", *e.InstructionIndex, e.Instruction)
	case e.InstructionIndex != nil:
		return fmt.Sprintf("%s(%d)", e.Kind, *e.InstructionIndex)
	default:
		return e.Kind.String()
	}
}

// InstructionErrorKind mirrors the runtime InstructionError variant order.
type InstructionErrorKind uint32

const (
	InsErrGenericError InstructionErrorKind = iota
	InsErrInvalidArgument
	InsErrInvalidInstructionData
	InsErrInvalidAccountData
	InsErrAccountDataTooSmall
	InsErrInsufficientFunds
	InsErrIncorrectProgramID
	InsErrMissingRequiredSignature
	InsErrAccountAlreadyInitialized
	InsErrUninitializedAccount
	InsErrUnbalancedInstruction
	InsErrModifiedProgramID
	InsErrExternalAccountLamportSpend
	InsErrExternalAccountDataModified
	InsErrReadonlyLamportChange
	InsErrReadonlyDataModified
	InsErrDuplicateAccountIndex
	InsErrExecutableModified
	InsErrRentEpochModified
	InsErrNotEnoughAccountKeys
	InsErrAccountDataSizeChanged
	InsErrAccountNotExecutable
	InsErrAccountBorrowFailed
	InsErrAccountBorrowOutstanding
	InsErrDuplicateAccountOutOfSync
	InsErrCustom
	InsErrInvalidError
	InsErrExecutableDataModified
	InsErrExecutableLamportChange
	InsErrExecutableAccountNotRentExempt
	InsErrUnsupportedProgramID
	InsErrCallDepth
	InsErrMissingAccount
	InsErrReentrancyNotAllowed
	InsErrMaxSeedLengthExceeded
	InsErrInvalidSeeds
	InsErrInvalidRealloc
	InsErrComputeBudgetExceeded
	InsErrPrivilegeEscalation
	InsErrProgramEnvironmentSetupFailure
	InsErrProgramFailedToComplete
	InsErrProgramFailedToCompile
	InsErrImmutable
	InsErrIncorrectAuthority
	InsErrBorshIOError
	InsErrAccountNotRentExempt
	InsErrInvalidAccountOwner
	InsErrArithmeticOverflow
	InsErrUnsupportedSysvar
	InsErrIllegalOwner
	InsErrMaxAccountsDataAllocationsExceeded
	InsErrMaxAccountsExceeded
	InsErrMaxInstructionTraceLengthExceeded
	InsErrBuiltinProgramsMustConsumeComputeUnits
)

var insErrNames = [...]string{
	"GenericError", "InvalidArgument", "InvalidInstructionData",
	"InvalidAccountData", "AccountDataTooSmall", "InsufficientFunds",
	"IncorrectProgramId", "MissingRequiredSignature",
	"AccountAlreadyInitialized", "UninitializedAccount",
	"UnbalancedInstruction", "ModifiedProgramId",
	"ExternalAccountLamportSpend", "ExternalAccountDataModified",
	"ReadonlyLamportChange", "ReadonlyDataModified", "DuplicateAccountIndex",
	"ExecutableModified", "RentEpochModified", "NotEnoughAccountKeys",
	"AccountDataSizeChanged", "AccountNotExecutable", "AccountBorrowFailed",
	"AccountBorrowOutstanding", "DuplicateAccountOutOfSync", "Custom",
	"InvalidError", "ExecutableDataModified", "ExecutableLamportChange",
	"ExecutableAccountNotRentExempt", "UnsupportedProgramId", "CallDepth",
	"MissingAccount", "ReentrancyNotAllowed", "MaxSeedLengthExceeded",
	"InvalidSeeds", "InvalidRealloc", "ComputeBudgetExceeded",
	"PrivilegeEscalation", "ProgramEnvironmentSetupFailure",
	"ProgramFailedToComplete", "ProgramFailedToCompile", "Immutable",
	"IncorrectAuthority", "BorshIoError", "AccountNotRentExempt",
	"InvalidAccountOwner", "ArithmeticOverflow", "UnsupportedSysvar",
	"IllegalOwner", "MaxAccountsDataAllocationsExceeded",
	"MaxAccountsExceeded", "MaxInstructionTraceLengthExceeded",
	"BuiltinProgramsMustConsumeComputeUnits",
}

func (k InstructionErrorKind) String() string {
	if int(k) < len(insErrNames) {
		return insErrNames[k]
	}
	return fmt.Sprintf("InstructionError(%d)", uint32(k))
}

type InstructionError struct {
	Kind   InstructionErrorKind
	Custom *uint32 // set for the Custom variant
}

func (e *InstructionError) String() string {
	if e.Kind == InsErrCustom && e.Custom != nil {
		return fmt.Sprintf("Custom(%d)", *e.Custom)
	}
	return e.Kind.String()
}

// DecodeTransactionError decodes the bincode-encoded transaction error from a
// block update's transaction meta. A decode failure here indicates a
// serialization mismatch between producer and consumer, never bad user data,
// so callers treat it as fatal for the whole block.
func DecodeTransactionError(raw []byte) (*TransactionError, error) {
	dec := bin.NewBinDecoder(raw)

	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, errors.Wrap(err, "transaction error tag")
	}
	out := &TransactionError{Kind: TransactionErrorKind(tag)}
	if int(tag) >= len(txErrNames) {
		return nil, errors.Errorf("unknown transaction error tag %d", tag)
	}

	switch out.Kind {
	case TxErrInstructionError:
		idx, err := dec.ReadUint8()
		if err != nil {
			return nil, errors.Wrap(err, "instruction error index")
		}
		insTag, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, errors.Wrap(err, "instruction error tag")
		}
		if int(insTag) >= len(insErrNames) {
			return nil, errors.Errorf("unknown instruction error tag %d", insTag)
		}
		ins := &InstructionError{Kind: InstructionErrorKind(insTag)}
		if ins.Kind == InsErrCustom {
			code, err := dec.ReadUint32(bin.LE)
			if err != nil {
				return nil, errors.Wrap(err, "custom error code")
			}
			ins.Custom = &code
		}
		out.InstructionIndex = &idx
		out.Instruction = ins

	case TxErrDuplicateInstruction, TxErrInsufficientFundsForRent,
		TxErrProgramExecutionTemporarilyRestricted:
		idx, err := dec.ReadUint8()
		if err != nil {
			return nil, errors.Wrapf(err, "%s payload", out.Kind)
		}
		out.InstructionIndex = &idx
	}

	return out, nil
}
