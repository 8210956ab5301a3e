package app

import (
	"context"
	"errors"
	"net"

	"github.com/bft-labs/walletd/internal/codec"
	"github.com/bft-labs/walletd/internal/domain"
	"github.com/bft-labs/walletd/pkg/log"
	"github.com/bft-labs/walletd/pkg/wire"
)

// serveConn runs the per-connection loop: read a frame, execute it against
// the ledger, write the response. A transport error ends this connection
// only; rejected or unknown instructions keep it open.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.lifecycle.WorkerDone()
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.metrics.connOpened()
	defer s.metrics.connClosed()
	s.logger.Info("client connected", log.String("remote", remote))

	for {
		instr, err := codec.ReadInstruction(conn)
		if err != nil {
			if errors.Is(err, wire.ErrConnectionClosed) {
				s.logger.Info("client disconnected", log.String("remote", remote))
			} else {
				s.logger.Error("read failed", log.String("remote", remote), log.Err(err))
			}
			return
		}

		res := s.execute(ctx, remote, instr)

		if err := codec.WriteResult(conn, res); err != nil {
			s.logger.Error("write failed", log.String("remote", remote), log.Err(err))
			return
		}
	}
}

func (s *Server) execute(ctx context.Context, remote string, instr domain.Instruction) domain.Result {
	kind := instr.Kind.String()

	if instr.Kind == domain.KindUnknown {
		s.logger.Warn("invalid instruction",
			log.String("remote", remote),
			log.String("tag", string(instr.Tag[:])),
			log.Uint16("amount", instr.Amount),
		)
	}

	res, err := s.ledger.Execute(ctx, instr)
	switch {
	case err != nil:
		s.logger.Error("balance store failure",
			log.String("remote", remote),
			log.String("kind", kind),
			log.Uint16("amount", instr.Amount),
			log.Err(err),
		)
		s.metrics.recordInstruction(kind, outcomeStore)
	case instr.Kind == domain.KindUnknown:
		s.metrics.recordInstruction(kind, outcomeInvalid)
	case !res.OK():
		s.logger.Debug("instruction rejected",
			log.String("remote", remote),
			log.String("kind", kind),
			log.Uint16("amount", instr.Amount),
		)
		s.metrics.recordInstruction(kind, outcomeRejected)
	default:
		s.metrics.recordInstruction(kind, outcomeOK)
	}
	return res
}
