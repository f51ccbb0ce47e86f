package mailqueue

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Enqueue(ctx context.Context, e *Email) error {
	var payload interface{}
	if len(e.Payload) > 0 {
		payload = []byte(e.Payload)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_queue (id, recipient, subject, template, payload, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Recipient, e.Subject, e.Template, payload, StatusPending)
	return err
}

func (r *postgresRepo) ListPending(ctx context.Context) ([]*Email, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient, subject, template, payload, status, created_at
		FROM email_queue WHERE status=$1 ORDER BY created_at ASC`, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []*Email
	for rows.Next() {
		e := &Email{}
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Recipient, &e.Subject, &e.Template,
			&payload, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
