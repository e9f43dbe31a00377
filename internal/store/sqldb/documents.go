// Package sqldb stores each logical store as one row of the store_documents
// table, on PostgreSQL or SQLite through bun.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type document struct {
	bun.BaseModel `bun:"table:store_documents"`

	Name      string    `bun:"name,pk"`
	Body      string    `bun:"body,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type Documents struct {
	db  *bun.DB
	now func() time.Time
}

func NewDocuments(db *bun.DB) *Documents {
	return &Documents{db: db, now: time.Now}
}

func (d *Documents) EnsureSchema(ctx context.Context) error {
	_, err := d.db.NewCreateTable().
		Model((*document)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create store_documents: %w", err)
	}
	return nil
}

func (d *Documents) Read(ctx context.Context, name string) ([]byte, error) {
	var doc document
	err := d.db.NewSelect().
		Model(&doc).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return []byte(doc.Body), nil
}

func (d *Documents) Write(ctx context.Context, name string, data []byte) error {
	doc := document{
		Name:      name,
		Body:      string(data),
		UpdatedAt: d.now().UTC(),
	}

	return d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&doc).
			On("CONFLICT (name) DO UPDATE").
			Set("body = EXCLUDED.body").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		return nil
	})
}

// Names lists the stores that have been written at least once.
func (d *Documents) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := d.db.NewSelect().
		Model((*document)(nil)).
		Column("name").
		OrderExpr("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, err
	}
	return names, nil
}
