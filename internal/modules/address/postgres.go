package address

import (
	"context"
	"database/sql"
)

// defaultID is the fixed key of the singleton row. Keeping it constant makes
// the upsert race-free, unlike a delete-all-then-insert dance.
const defaultID = "default"

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetDefault(ctx context.Context) (*SellerAddress, error) {
	a := &SellerAddress{}
	err := r.db.QueryRowContext(ctx, `
		SELECT name, street1, street2, city, state, zip, country, phone, email, updated_at
		FROM seller_addresses WHERE id=$1`, defaultID).Scan(
		&a.Name, &a.Street1, &a.Street2, &a.City, &a.State, &a.Zip,
		&a.Country, &a.Phone, &a.Email, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) SetDefault(ctx context.Context, a *SellerAddress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seller_addresses
		  (id, name, street1, street2, city, state, zip, country, phone, email, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		ON CONFLICT (id) DO UPDATE SET
		  name=EXCLUDED.name, street1=EXCLUDED.street1, street2=EXCLUDED.street2,
		  city=EXCLUDED.city, state=EXCLUDED.state, zip=EXCLUDED.zip,
		  country=EXCLUDED.country, phone=EXCLUDED.phone, email=EXCLUDED.email,
		  updated_at=NOW()`,
		defaultID, a.Name, a.Street1, a.Street2, a.City, a.State, a.Zip,
		a.Country, a.Phone, a.Email)
	return err
}
