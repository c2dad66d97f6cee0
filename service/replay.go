package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
	"github.com/Ch3ngL0rd/orderbooks/infra/sequence"
	"github.com/Ch3ngL0rd/orderbooks/infra/wal"
)

/*
ReplayFromWAL rebuilds book and journal state from the command log.

It MUST run before accepting traffic. Commands at or below fromSeq are
covered by the loaded snapshot and skipped. Domain errors that were
reported to the submitter at accept time (no liquidity, unknown cancel
id) recur deterministically during replay and are ignored; anything else
means the log is corrupt.
*/
func ReplayFromWAL(
	walDir string,
	fromSeq uint64,
	book *orderbook.OrderBook,
	journal *trade.Journal,
	seqGen *sequence.Sequencer,
	log *zap.Logger,
) error {
	var replayed int

	lastSeq, err := wal.Replay(walDir, fromSeq, func(rec *wal.Record) error {
		replayed++
		switch rec.Type {
		case wal.RecordPlace:
			user, side, price, qty, err := parsePlace(rec.Data)
			if err != nil {
				return err
			}
			res, err := book.SubmitLimit(rec.Seq, rec.Time, side, user, price, qty)
			if err != nil {
				return fmt.Errorf("replay place seq %d: %w", rec.Seq, err)
			}
			for _, ex := range res.Executions {
				journal.Append(tradeFromExec(ex))
			}

		case wal.RecordTake:
			user, side, err := parseTake(rec.Data)
			if err != nil {
				return err
			}
			ex, err := book.MarketTake(rec.Seq, rec.Time, side, user)
			if err != nil {
				if errors.Is(err, orderbook.ErrNoLiquidity) {
					return nil
				}
				return fmt.Errorf("replay take seq %d: %w", rec.Seq, err)
			}
			journal.Append(tradeFromExec(ex))

		case wal.RecordCancel:
			id, err := parseCancel(rec.Data)
			if err != nil {
				return err
			}
			if _, err := book.Cancel(id); err != nil && !errors.Is(err, orderbook.ErrNotFound) {
				return fmt.Errorf("replay cancel seq %d: %w", rec.Seq, err)
			}

		case wal.RecordCancelPrice:
			user, price, err := parseCancelPrice(rec.Data)
			if err != nil {
				return err
			}
			book.CancelAtPrice(user, price)

		default:
			return fmt.Errorf("unknown record type %d at seq %d", rec.Type, rec.Seq)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Resume sequencing AFTER replay.
	seqGen.Reset(lastSeq)

	log.Info("wal replay complete",
		zap.Uint64("from_seq", fromSeq),
		zap.Uint64("last_seq", lastSeq),
		zap.Int("commands", replayed),
		zap.Int("resting_orders", book.Len()),
		zap.Int("trades", journal.Len()),
	)
	return nil
}
