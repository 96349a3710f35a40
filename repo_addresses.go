package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Addresses interface {
	repository.Repository[*Address]

	Create(ctx context.Context, record *Address, criteria ...repository.InsertCriteria) (*Address, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Address, criteria ...repository.InsertCriteria) (*Address, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Address, error)

	DeleteAddress(ctx context.Context, id uuid.UUID) error
	DeleteAddressTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type addresses struct {
	repository.Repository[*Address]
	db *bun.DB
}

var (
	_ Addresses                       = (*addresses)(nil)
	_ repository.Repository[*Address] = (*addresses)(nil)
)

func NewAddressesRepository(db *bun.DB) Addresses {
	repo := repository.NewRepository[*Address](db, repository.ModelHandlers[*Address]{
		NewRecord: func() *Address { return &Address{} },
		GetID: func(a *Address) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Address, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &addresses{
		Repository: repo,
		db:         db,
	}
}

func (a *addresses) Create(ctx context.Context, record *Address, criteria ...repository.InsertCriteria) (*Address, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *addresses) CreateTx(ctx context.Context, tx bun.IDB, record *Address, criteria ...repository.InsertCriteria) (*Address, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *addresses) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Address, error) {
	return a.ListByUserTx(ctx, a.db, userID)
}

func (a *addresses) ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Address, error) {
	records := []*Address{}

	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *addresses) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	return a.DeleteAddressTx(ctx, a.db, id)
}

func (a *addresses) DeleteAddressTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Address)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}
