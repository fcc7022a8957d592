// Package geyser speaks the yellowstone geyser gRPC protocol: wire message
// shapes plus a thin streaming client. Message structs are declared in place
// with their protobuf field tags instead of being generated from the proto
// files; only the fields this service consumes are declared.
package geyser

import "fmt"

// CommitmentLevel is the wire encoding of the commitment filter.
type CommitmentLevel int32

const (
	CommitmentProcessed CommitmentLevel = 0
	CommitmentConfirmed CommitmentLevel = 1
	CommitmentFinalized CommitmentLevel = 2
)

type SubscribeRequest struct {
	Accounts   map[string]*SubscribeRequestFilterAccounts `protobuf:"bytes,1,rep,name=accounts"`
	Slots      map[string]*SubscribeRequestFilterSlots    `protobuf:"bytes,2,rep,name=slots"`
	Blocks     map[string]*SubscribeRequestFilterBlocks   `protobuf:"bytes,5,rep,name=blocks"`
	Commitment *CommitmentLevel                           `protobuf:"varint,6,opt,name=commitment,enum"`
	Ping       *SubscribeRequestPing                      `protobuf:"bytes,9,opt,name=ping"`
}

func (x *SubscribeRequest) Reset()         { *x = SubscribeRequest{} }
func (x *SubscribeRequest) String() string { return fmt.Sprintf("%+v", *x) }
func (x *SubscribeRequest) ProtoMessage()  {}

type SubscribeRequestFilterAccounts struct {
	Account []string `protobuf:"bytes,2,rep,name=account"`
	Owner   []string `protobuf:"bytes,3,rep,name=owner"`
}

type SubscribeRequestFilterSlots struct {
	FilterByCommitment *bool `protobuf:"varint,1,opt,name=filter_by_commitment"`
}

type SubscribeRequestFilterBlocks struct {
	IncludeTransactions *bool `protobuf:"varint,2,opt,name=include_transactions"`
	IncludeAccounts     *bool `protobuf:"varint,3,opt,name=include_accounts"`
}

type SubscribeRequestPing struct {
	ID int32 `protobuf:"varint,1,opt,name=id"`
}

type SubscribeUpdate struct {
	Filters []string                `protobuf:"bytes,1,rep,name=filters"`
	Account *SubscribeUpdateAccount `protobuf:"bytes,2,opt,name=account"`
	Slot    *SubscribeUpdateSlot    `protobuf:"bytes,3,opt,name=slot"`
	Block   *SubscribeUpdateBlock   `protobuf:"bytes,5,opt,name=block"`
	Ping    *SubscribeUpdatePing    `protobuf:"bytes,6,opt,name=ping"`
	Pong    *SubscribeUpdatePong    `protobuf:"bytes,9,opt,name=pong"`
}

func (x *SubscribeUpdate) Reset()         { *x = SubscribeUpdate{} }
func (x *SubscribeUpdate) String() string { return fmt.Sprintf("%+v", *x) }
func (x *SubscribeUpdate) ProtoMessage()  {}

type SubscribeUpdatePing struct{}

type SubscribeUpdatePong struct {
	ID int32 `protobuf:"varint,1,opt,name=id"`
}

type SubscribeUpdateSlot struct {
	Slot   uint64  `protobuf:"varint,1,opt,name=slot"`
	Parent *uint64 `protobuf:"varint,2,opt,name=parent"`
	Status int32   `protobuf:"varint,3,opt,name=status,enum"`
}

type SubscribeUpdateAccount struct {
	Account   *SubscribeUpdateAccountInfo `protobuf:"bytes,1,opt,name=account"`
	Slot      uint64                      `protobuf:"varint,2,opt,name=slot"`
	IsStartup bool                        `protobuf:"varint,3,opt,name=is_startup"`
}

type SubscribeUpdateAccountInfo struct {
	Pubkey       []byte `protobuf:"bytes,1,opt,name=pubkey"`
	Lamports     uint64 `protobuf:"varint,2,opt,name=lamports"`
	Owner        []byte `protobuf:"bytes,3,opt,name=owner"`
	Executable   bool   `protobuf:"varint,4,opt,name=executable"`
	RentEpoch    uint64 `protobuf:"varint,5,opt,name=rent_epoch"`
	Data         []byte `protobuf:"bytes,6,opt,name=data"`
	WriteVersion uint64 `protobuf:"varint,7,opt,name=write_version"`
	TxnSignature []byte `protobuf:"bytes,8,opt,name=txn_signature"`
}

// SubscribeUpdateBlock is one raw block update: the decoder's input.
type SubscribeUpdateBlock struct {
	Slot            uint64                           `protobuf:"varint,1,opt,name=slot"`
	Blockhash       string                           `protobuf:"bytes,2,opt,name=blockhash"`
	Rewards         *Rewards                         `protobuf:"bytes,3,opt,name=rewards"`
	BlockTime       *UnixTimestamp                   `protobuf:"bytes,4,opt,name=block_time"`
	BlockHeight     *BlockHeight                     `protobuf:"bytes,5,opt,name=block_height"`
	ParentSlot      uint64                           `protobuf:"varint,7,opt,name=parent_slot"`
	ParentBlockhash string                           `protobuf:"bytes,8,opt,name=parent_blockhash"`
	Transactions    []*SubscribeUpdateTransactionInfo `protobuf:"bytes,6,rep,name=transactions"`
}

func (x *SubscribeUpdateBlock) Reset()         { *x = SubscribeUpdateBlock{} }
func (x *SubscribeUpdateBlock) String() string { return fmt.Sprintf("%+v", *x) }
func (x *SubscribeUpdateBlock) ProtoMessage()  {}

type UnixTimestamp struct {
	Timestamp int64 `protobuf:"varint,1,opt,name=timestamp"`
}

type BlockHeight struct {
	BlockHeight uint64 `protobuf:"varint,1,opt,name=block_height"`
}

type SubscribeUpdateTransactionInfo struct {
	Signature   []byte                 `protobuf:"bytes,1,opt,name=signature"`
	IsVote      bool                   `protobuf:"varint,2,opt,name=is_vote"`
	Transaction *Transaction           `protobuf:"bytes,3,opt,name=transaction"`
	Meta        *TransactionStatusMeta `protobuf:"bytes,4,opt,name=meta"`
	Index       uint64                 `protobuf:"varint,5,opt,name=index"`
}

type Transaction struct {
	Signatures [][]byte `protobuf:"bytes,1,rep,name=signatures"`
	Message    *Message `protobuf:"bytes,2,opt,name=message"`
}

type Message struct {
	Header              *MessageHeader              `protobuf:"bytes,1,opt,name=header"`
	AccountKeys         [][]byte                    `protobuf:"bytes,2,rep,name=account_keys"`
	RecentBlockhash     []byte                      `protobuf:"bytes,3,opt,name=recent_blockhash"`
	Instructions        []*CompiledInstruction      `protobuf:"bytes,4,rep,name=instructions"`
	Versioned           bool                        `protobuf:"varint,5,opt,name=versioned"`
	AddressTableLookups []*MessageAddressTableLookup `protobuf:"bytes,6,rep,name=address_table_lookups"`
}

type MessageHeader struct {
	NumRequiredSignatures       uint32 `protobuf:"varint,1,opt,name=num_required_signatures"`
	NumReadonlySignedAccounts   uint32 `protobuf:"varint,2,opt,name=num_readonly_signed_accounts"`
	NumReadonlyUnsignedAccounts uint32 `protobuf:"varint,3,opt,name=num_readonly_unsigned_accounts"`
}

type CompiledInstruction struct {
	ProgramIDIndex uint32 `protobuf:"varint,1,opt,name=program_id_index"`
	Accounts       []byte `protobuf:"bytes,2,opt,name=accounts"`
	Data           []byte `protobuf:"bytes,3,opt,name=data"`
}

type MessageAddressTableLookup struct {
	AccountKey      []byte `protobuf:"bytes,1,opt,name=account_key"`
	WritableIndexes []byte `protobuf:"bytes,2,opt,name=writable_indexes"`
	ReadonlyIndexes []byte `protobuf:"bytes,3,opt,name=readonly_indexes"`
}

type TransactionStatusMeta struct {
	Err                  *TransactionError `protobuf:"bytes,1,opt,name=err"`
	Fee                  uint64            `protobuf:"varint,2,opt,name=fee"`
	PreBalances          []uint64          `protobuf:"varint,3,rep,name=pre_balances"`
	PostBalances         []uint64          `protobuf:"varint,4,rep,name=post_balances"`
	ComputeUnitsConsumed *uint64           `protobuf:"varint,16,opt,name=compute_units_consumed"`
}

type TransactionError struct {
	Err []byte `protobuf:"bytes,1,opt,name=err"`
}

// RewardType wire values; zero means unspecified.
const (
	RewardTypeUnspecified int32 = 0
	RewardTypeFee         int32 = 1
	RewardTypeRent        int32 = 2
	RewardTypeStaking     int32 = 3
	RewardTypeVoting      int32 = 4
)

type Rewards struct {
	Rewards []*Reward `protobuf:"bytes,1,rep,name=rewards"`
}

type Reward struct {
	Pubkey      string `protobuf:"bytes,1,opt,name=pubkey"`
	Lamports    int64  `protobuf:"varint,2,opt,name=lamports"`
	PostBalance uint64 `protobuf:"varint,3,opt,name=post_balance"`
	RewardType  int32  `protobuf:"varint,4,opt,name=reward_type,enum"`
	Commission  string `protobuf:"bytes,5,opt,name=commission"`
}
