package remote

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opDelete
)

type op struct {
	kind   opKind
	coll   Collection
	id     string
	data   []byte
	fields map[string]any
}

// Batch stages writes and applies them in one transaction. Staging does no
// I/O; an error while staging is kept and returned by Commit. A batch can be
// committed once.
type Batch struct {
	client    *Client
	ops       []op
	err       error
	committed bool
}

// Add stages a new document and returns the id it will be stored under.
func (b *Batch) Add(coll Collection, v any) string {
	id := uuid.NewString()
	if b.err != nil {
		return id
	}
	if err := checkCollection(coll); err != nil {
		b.err = err
		return id
	}
	data, err := encodeWithID(v, id)
	if err != nil {
		b.err = fmt.Errorf("stage add %s: %w", coll, err)
		return id
	}
	b.ops = append(b.ops, op{kind: opAdd, coll: coll, id: id, data: data})
	return id
}

// Update stages a partial update. Committing fails with ErrNotFound when the
// document does not exist at commit time.
func (b *Batch) Update(coll Collection, id string, fields map[string]any) {
	if b.err != nil {
		return
	}
	if err := checkCollection(coll); err != nil {
		b.err = err
		return
	}
	b.ops = append(b.ops, op{kind: opUpdate, coll: coll, id: id, fields: fields})
}

func (b *Batch) Delete(coll Collection, id string) {
	if b.err != nil {
		return
	}
	if err := checkCollection(coll); err != nil {
		b.err = err
		return
	}
	b.ops = append(b.ops, op{kind: opDelete, coll: coll, id: id})
}

// Len returns the number of staged writes.
func (b *Batch) Len() int { return len(b.ops) }

// Commit applies every staged write or none of them. Subscribers of each
// touched collection are notified after the transaction commits.
func (b *Batch) Commit(ctx context.Context) error {
	if b.committed {
		return ErrBatchCommitted
	}
	b.committed = true
	if b.err != nil {
		return fmt.Errorf("commit batch: %w", b.err)
	}
	if len(b.ops) == 0 {
		return nil
	}

	c := b.client
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	touched := make(map[Collection][]string)
	for _, o := range b.ops {
		if err := apply(ctx, tx, c.userID, o); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		touched[o.coll] = append(touched[o.coll], o.id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	colls := make([]Collection, 0, len(touched))
	for coll := range touched {
		colls = append(colls, coll)
	}
	slices.Sort(colls)
	for _, coll := range colls {
		c.publish(coll, touched[coll])
	}
	c.logger.Debug("batch committed", "ops", len(b.ops), "collections", len(colls))
	return nil
}

func apply(ctx context.Context, tx *sql.Tx, userID string, o op) error {
	switch o.kind {
	case opAdd:
		_, err := tx.ExecContext(ctx,
			"INSERT INTO documents (user_id, collection, id, data) VALUES (?, ?, ?, ?)",
			userID, string(o.coll), o.id, string(o.data),
		)
		if err != nil {
			return fmt.Errorf("insert %s/%s: %w", o.coll, o.id, err)
		}
	case opUpdate:
		var stored string
		err := tx.QueryRowContext(ctx,
			"SELECT data FROM documents WHERE user_id = ? AND collection = ? AND id = ?",
			userID, string(o.coll), o.id,
		).Scan(&stored)
		if err == sql.ErrNoRows {
			return fmt.Errorf("update %s/%s: %w", o.coll, o.id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read %s/%s: %w", o.coll, o.id, err)
		}
		data, err := merge([]byte(stored), o.fields)
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", o.coll, o.id, err)
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND collection = ? AND id = ?",
			string(data), userID, string(o.coll), o.id,
		)
		if err != nil {
			return fmt.Errorf("update %s/%s: %w", o.coll, o.id, err)
		}
	case opDelete:
		_, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE user_id = ? AND collection = ? AND id = ?",
			userID, string(o.coll), o.id,
		)
		if err != nil {
			return fmt.Errorf("delete %s/%s: %w", o.coll, o.id, err)
		}
	}
	return nil
}
