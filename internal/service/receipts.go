package service

import (
	"context"
	"fmt"
	"math/rand"

	"pharmacy-pos/internal/util"

	"go.uber.org/zap"
)

// ReceiptCounter is the monotonic sequence behind receipt numbers. The Redis
// client implements it with INCR.
type ReceiptCounter interface {
	NextReceiptSeq(ctx context.Context) (int64, error)
}

// ReceiptIssuer formats receipt numbers from the counter. When the counter
// is unavailable it falls back to a prefix plus random 4-digit suffix, which
// is only best-effort unique.
type ReceiptIssuer struct {
	counter ReceiptCounter
	prefix  string
	logger  *zap.Logger
}

// NewReceiptIssuer creates a receipt issuer. A nil counter always uses the
// random fallback.
func NewReceiptIssuer(counter ReceiptCounter, prefix string) *ReceiptIssuer {
	return &ReceiptIssuer{
		counter: counter,
		prefix:  prefix,
		logger:  util.GetLogger(),
	}
}

// Next returns the next receipt number, e.g. "RCP-00042".
func (r *ReceiptIssuer) Next(ctx context.Context) string {
	if r.counter != nil {
		seq, err := r.counter.NextReceiptSeq(ctx)
		if err == nil {
			return fmt.Sprintf("%s-%05d", r.prefix, seq)
		}
		r.logger.Warn("Receipt counter unavailable, using random suffix", zap.Error(err))
	}

	util.ReceiptFallbackTotal.Inc()
	return fmt.Sprintf("%s-%04d", r.prefix, 1000+rand.Intn(9000))
}
