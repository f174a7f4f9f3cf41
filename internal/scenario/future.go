package scenario

import "context"

// Future repeats the write operations with an unrecognized extra field in
// every payload. A conformant wallet tolerates additive schema changes and
// behaves exactly as it would without the field.
func (d *Driver) Future(ctx context.Context) error {
	if err := d.Withdrawal(ctx, true); err != nil {
		return err
	}
	if err := d.Deposit(ctx, true); err != nil {
		return err
	}
	if err := d.RollbackScenario(ctx, true); err != nil {
		return err
	}
	return d.Reward(ctx, true)
}

// All runs the thorough battery: reads, the full common-wallet cycle,
// idempotency, the error table, and forward compatibility.
func (d *Driver) All(ctx context.Context) error {
	if err := d.GetBalance(ctx); err != nil {
		return err
	}
	if err := d.CommonWallet(ctx); err != nil {
		return err
	}
	if err := d.Idempotency(ctx); err != nil {
		return err
	}
	if err := d.Errors(ctx); err != nil {
		return err
	}
	return d.Future(ctx)
}
