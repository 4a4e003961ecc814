package support

import (
	"context"

	"hotelops/internal/app/uow"
)

// Unit wraps a unit of work together with its ownership: handlers reuse an
// ambient unit from the middleware pipeline when present, otherwise they
// manage their own.
type Unit struct {
	uow.UnitOfWork
	managed   bool
	committed bool
}

// Begin resolves the ambient unit of work or starts a managed one.
func Begin(ctx context.Context, factory uow.UoWFactory) (*Unit, context.Context, error) {
	return begin(ctx, factory, uow.TxOptions{})
}

// BeginReadOnly is Begin with a read-only transaction when a new unit is started.
func BeginReadOnly(ctx context.Context, factory uow.UoWFactory) (*Unit, context.Context, error) {
	return begin(ctx, factory, uow.TxOptions{ReadOnly: true})
}

func begin(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (*Unit, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &Unit{UnitOfWork: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	return &Unit{UnitOfWork: unit, managed: true}, execCtx, nil
}

// Finish commits a managed unit. Units owned by the pipeline are left for the
// transaction middleware to commit.
func (u *Unit) Finish(ctx context.Context) error {
	if !u.managed {
		return nil
	}
	if err := u.Commit(ctx); err != nil {
		return err
	}
	u.committed = true
	return nil
}

// Close rolls back a managed unit that was never committed. Safe to defer.
func (u *Unit) Close(ctx context.Context) {
	if u.managed && !u.committed {
		_ = u.Rollback(ctx)
	}
}
