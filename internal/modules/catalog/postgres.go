package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id,name,description,price,currency,images,category,
       weight_oz,length_in,width_in,height_in,
       stock_quantity,in_stock,featured,created_at,updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	var length, width, height interface{}
	if p.Dimensions != nil {
		length, width, height = p.Dimensions.Length, p.Dimensions.Width, p.Dimensions.Height
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, name, description, price, currency, images, category,
		   weight_oz, length_in, width_in, height_in,
		   stock_quantity, in_stock, featured)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.Name, p.Description, p.Price, p.Currency, images, p.Category,
		p.WeightOz, length, width, height,
		p.StockQuantity, p.InStock, p.Featured)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, uid)
	return scanProduct(row.Scan)
}

func (r *postgresRepo) List(ctx context.Context, category string, featuredOnly, inStockOnly bool) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	n := 1
	if category != "" {
		query += fmt.Sprintf(` AND category=$%d`, n)
		args = append(args, category)
		n++
	}
	if featuredOnly {
		query += ` AND featured=true`
	}
	if inStockOnly {
		query += ` AND in_stock=true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	var length, width, height interface{}
	if p.Dimensions != nil {
		length, width, height = p.Dimensions.Length, p.Dimensions.Width, p.Dimensions.Height
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, price=$3, currency=$4, images=$5, category=$6,
		    weight_oz=$7, length_in=$8, width_in=$9, height_in=$10,
		    stock_quantity=$11, in_stock=$12, featured=$13, updated_at=NOW()
		WHERE id=$14`,
		p.Name, p.Description, p.Price, p.Currency, images, p.Category,
		p.WeightOz, length, width, height,
		p.StockQuantity, p.InStock, p.Featured, p.ID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, uid)
	return err
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id string, quantity int) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity - $1, 0),
		    in_stock = GREATEST(stock_quantity - $1, 0) > 0,
		    updated_at = NOW()
		WHERE id=$2`, quantity, uid)
	return err
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var images []byte
	var length, width, height sql.NullFloat64
	err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &images, &p.Category,
		&p.WeightOz, &length, &width, &height,
		&p.StockQuantity, &p.InStock, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if images != nil {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, err
		}
	}
	if length.Valid || width.Valid || height.Valid {
		p.Dimensions = &Dimensions{Length: length.Float64, Width: width.Float64, Height: height.Float64}
	}
	return p, nil
}
