package service

import (
	"context"
	"math/big"

	"go.uber.org/zap"
)

type groupNumberSource interface {
	RecentGroupNumbers(ctx context.Context, limit int) ([]string, error)
}

// SequenceAllocator derives the next group number from recently stored ones.
type SequenceAllocator struct {
	repo      groupNumberSource
	scanLimit int
	logger    *zap.Logger
}

// NewSequenceAllocator constructs an allocator scanning up to scanLimit rows.
func NewSequenceAllocator(repo groupNumberSource, scanLimit int, logger *zap.Logger) *SequenceAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scanLimit <= 0 {
		scanLimit = 100
	}
	return &SequenceAllocator{repo: repo, scanLimit: scanLimit, logger: logger}
}

// Next returns max(recent numbers)+1 as a decimal string. Non-numeric values
// are ignored. A lookup failure yields "1"; the unique index on the column
// catches any resulting collision.
func (a *SequenceAllocator) Next(ctx context.Context) string {
	numbers, err := a.repo.RecentGroupNumbers(ctx, a.scanLimit)
	if err != nil {
		a.logger.Warn("group number lookup failed, starting at 1", zap.Error(err))
		return "1"
	}
	return NextGroupNumber(numbers)
}

// NextGroupNumber returns one more than the largest base-10 value in numbers
// as a decimal string. Values have no upper bound, so they are compared as
// arbitrary-precision integers.
func NextGroupNumber(numbers []string) string {
	max := new(big.Int)
	n := new(big.Int)
	for _, raw := range numbers {
		if _, ok := n.SetString(raw, 10); !ok || n.Sign() < 0 {
			continue
		}
		if n.Cmp(max) > 0 {
			max.Set(n)
		}
	}
	return max.Add(max, big.NewInt(1)).String()
}
