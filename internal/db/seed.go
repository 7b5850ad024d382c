package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

// Seed opens a handful of demo campaigns and funds them partially through
// the ledger, so every record it creates passes the normal preconditions.
func Seed(ctx context.Context, svc port.FundraiserUseCase) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 1; i <= 5; i++ {
		owner := domain.Address(fmt.Sprintf("0xowner%02d", i))
		required := uint64(10000 + r.Intn(90000)) // 100.00 .. 999.99 units
		uri := fmt.Sprintf("https://example.com/campaigns/%d.json", i)
		id, err := svc.StartCampaign(ctx, owner, uri, required)
		if err != nil {
			return fmt.Errorf("start demo campaign %d: %w", i, err)
		}
		// donations never exceed the target, so Donate cannot fail with
		// ErrOverPayment here
		remaining := required
		for j := 0; j < 10 && remaining > 1; j++ {
			donor := domain.Address(fmt.Sprintf("0xdonor%02d", r.Intn(100)+1))
			value := uint64(r.Int63n(int64(remaining/2))) + 1
			if err = svc.Donate(ctx, donor, id, value); err != nil {
				return fmt.Errorf("donate to demo campaign %d: %w", id, err)
			}
			remaining -= value
		}
	}
	return nil
}
