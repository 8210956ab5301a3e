// Package codec maps wire frames to domain values and back.
package codec

import (
	"io"

	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/pkg/wire"
)

// DecodeInstruction turns a request frame into an Instruction. Unrecognized
// tags decode to KindUnknown rather than failing.
func DecodeInstruction(f wire.Frame) domain.Instruction {
	instr := domain.Instruction{Tag: f.Tag, Amount: f.Value}
	switch f.Tag {
	case wire.TagCredit:
		instr.Kind = domain.KindCredit
	case wire.TagDebit:
		instr.Kind = domain.KindDebit
	}
	return instr
}

// EncodeInstruction turns an Instruction into a request frame.
func EncodeInstruction(instr domain.Instruction) wire.Frame {
	tag := wire.Tag(instr.Tag)
	switch instr.Kind {
	case domain.KindCredit:
		tag = wire.TagCredit
	case domain.KindDebit:
		tag = wire.TagDebit
	}
	return wire.Frame{Tag: tag, Value: instr.Amount}
}

// EncodeResult turns a Result into a response frame. Errors always carry 0.
func EncodeResult(r domain.Result) wire.Frame {
	if r.OK() {
		return wire.Frame{Tag: wire.TagBalance, Value: r.Value}
	}
	return wire.Frame{Tag: wire.TagError}
}

// DecodeResult turns a response frame into a Result. Anything other than a
// balance tag is an error and its value is dropped.
func DecodeResult(f wire.Frame) domain.Result {
	if f.Tag == wire.TagBalance {
		return domain.Result{Code: domain.CodeBalance, Value: f.Value}
	}
	return domain.Rejected
}

// ReadInstruction reads and decodes one request.
func ReadInstruction(r io.Reader) (domain.Instruction, error) {
	f, err := wire.ReadFrame(r)
	if err != nil {
		return domain.Instruction{}, err
	}
	return DecodeInstruction(f), nil
}

// WriteResult encodes and writes one response.
func WriteResult(w io.Writer, res domain.Result) error {
	return wire.WriteFrame(w, EncodeResult(res))
}
