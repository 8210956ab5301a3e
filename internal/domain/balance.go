package domain

import "math"

// MaxBalance is the largest balance the account can hold.
const MaxBalance = math.MaxUint16

// Balance is the account's current value.
type Balance = uint16

// Kind identifies what an instruction asks for.
type Kind int

const (
	KindUnknown Kind = iota
	KindCredit
	KindDebit
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCredit:
		return "credit"
	case KindDebit:
		return "debit"
	default:
		return "unknown"
	}
}

// Instruction is a decoded request. Tag keeps the raw two-byte wire tag so an
// unrecognized instruction can still be reported.
type Instruction struct {
	Kind   Kind
	Tag    [2]byte
	Amount uint16
}

// Credit builds a credit instruction.
func Credit(amount uint16) Instruction {
	return Instruction{Kind: KindCredit, Tag: [2]byte{'C', 'R'}, Amount: amount}
}

// Debit builds a debit instruction.
func Debit(amount uint16) Instruction {
	return Instruction{Kind: KindDebit, Tag: [2]byte{'D', 'B'}, Amount: amount}
}

// Code is the outcome class of a Result.
type Code int

const (
	CodeError Code = iota
	CodeBalance
)

// String returns a human-readable representation of the code.
func (c Code) String() string {
	if c == CodeBalance {
		return "balance"
	}
	return "error"
}

// Result is the outcome of an instruction. Value is only meaningful when
// Code is CodeBalance.
type Result struct {
	Code  Code
	Value uint16
}

// OK reports whether the instruction succeeded.
func (r Result) OK() bool {
	return r.Code == CodeBalance
}

// Rejected is the result for every failed or unrecognized instruction.
var Rejected = Result{Code: CodeError}

// Apply computes the result of running instr against current. A rejected
// instruction leaves the balance unchanged; there is no clamping.
func Apply(current Balance, instr Instruction) Result {
	switch instr.Kind {
	case KindCredit:
		next := uint32(current) + uint32(instr.Amount)
		if next > MaxBalance {
			return Rejected
		}
		return Result{Code: CodeBalance, Value: uint16(next)}
	case KindDebit:
		// Non-strict: a debit may take the balance to exactly zero.
		if current < instr.Amount {
			return Rejected
		}
		return Result{Code: CodeBalance, Value: current - instr.Amount}
	default:
		return Rejected
	}
}
