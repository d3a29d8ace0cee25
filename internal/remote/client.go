package remote

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Client is one user's session handle on the document store. It owns the
// subscriptions it opens; DisposeAll releases them.
type Client struct {
	db     *sql.DB
	broker *Broker
	userID string
	logger *slog.Logger

	mu      sync.Mutex
	cancels map[*subscription]context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// NewClient returns a client scoped to userID. A nil broker gives the client
// a private one, which is enough for a single session.
func NewClient(db *sql.DB, broker *Broker, userID string, logger *slog.Logger) *Client {
	if broker == nil {
		broker = NewBroker(logger)
	}
	return &Client{
		db:      db,
		broker:  broker,
		userID:  userID,
		logger:  logger.With("user", userID),
		cancels: make(map[*subscription]context.CancelFunc),
	}
}

func (c *Client) UserID() string { return c.userID }

const documentCols = "id, data"

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var d Document
		var data string
		if err := rows.Scan(&d.ID, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Data = []byte(data)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetAll returns every document in coll in insertion order.
func (c *Client) GetAll(ctx context.Context, coll Collection) ([]Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+documentCols+" FROM documents WHERE user_id = ? AND collection = ? ORDER BY rowid",
		c.userID, string(coll),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll, err)
	}
	return scanDocuments(rows)
}

// Get returns the document or nil when it does not exist.
func (c *Client) Get(ctx context.Context, coll Collection, id string) (*Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	var d Document
	var data string
	err := c.db.QueryRowContext(ctx,
		"SELECT "+documentCols+" FROM documents WHERE user_id = ? AND collection = ? AND id = ?",
		c.userID, string(coll), id,
	).Scan(&d.ID, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", coll, id, err)
	}
	d.Data = []byte(data)
	return &d, nil
}

// Query returns the documents of coll whose top-level field equals value.
func (c *Client) Query(ctx context.Context, coll Collection, field string, value any) ([]Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	if !fieldName.MatchString(field) {
		return nil, fmt.Errorf("invalid field name %q", field)
	}
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+documentCols+" FROM documents WHERE user_id = ? AND collection = ? AND json_extract(data, ?) = ? ORDER BY rowid",
		c.userID, string(coll), "$."+field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", coll, field, err)
	}
	return scanDocuments(rows)
}

// QueryArray returns the documents of coll whose array field holds an
// object with key equal to value, e.g. pack items whose members include a
// given member id.
func (c *Client) QueryArray(ctx context.Context, coll Collection, field, key string, value any) ([]Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	if !fieldName.MatchString(field) || !fieldName.MatchString(key) {
		return nil, fmt.Errorf("invalid field name %q.%q", field, key)
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+documentCols+` FROM documents
		WHERE user_id = ? AND collection = ?
		AND EXISTS (SELECT 1 FROM json_each(data, ?) WHERE json_extract(value, ?) = ?)
		ORDER BY rowid`,
		c.userID, string(coll), "$."+field, "$."+key, value,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s.%s: %w", coll, field, key, err)
	}
	return scanDocuments(rows)
}

// Add stores v as a new document and returns its generated id.
func (c *Client) Add(ctx context.Context, coll Collection, v any) (string, error) {
	b := c.InitBatch()
	id := b.Add(coll, v)
	if err := b.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into an existing document.
func (c *Client) Update(ctx context.Context, coll Collection, id string, fields map[string]any) error {
	b := c.InitBatch()
	b.Update(coll, id, fields)
	return b.Commit(ctx)
}

// Delete removes a document. Deleting an absent document is not an error.
func (c *Client) Delete(ctx context.Context, coll Collection, id string) error {
	b := c.InitBatch()
	b.Delete(coll, id)
	return b.Commit(ctx)
}

// InitBatch starts an empty write batch.
func (c *Client) InitBatch() *Batch {
	return &Batch{client: c}
}

// Subscribe delivers the current contents of coll to fn and then the full
// collection again after every change to it, until the returned function is
// called, ctx is done, or the client is disposed. Notifications that arrive
// while fn is running coalesce into one refresh.
func (c *Client) Subscribe(ctx context.Context, coll Collection, fn func([]Document)) (func(), error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	sub := &subscription{userID: c.userID, coll: coll, notify: make(chan struct{}, 1)}
	subCtx, cancel := context.WithCancel(ctx)
	c.cancels[sub] = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	c.broker.add(sub)
	stop := func() {
		cancel()
		c.broker.remove(sub)
		c.mu.Lock()
		delete(c.cancels, sub)
		c.mu.Unlock()
	}

	docs, err := c.GetAll(subCtx, coll)
	if err != nil {
		stop()
		c.wg.Done()
		return nil, err
	}
	fn(docs)

	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-subCtx.Done():
				return
			case <-sub.notify:
				docs, err := c.GetAll(subCtx, coll)
				if err != nil {
					if subCtx.Err() != nil {
						return
					}
					c.logger.Error("refresh subscription", "collection", coll, "error", err)
					continue
				}
				fn(docs)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(stop) }, nil
}

// DisposeAll cancels every subscription and waits for their delivery
// goroutines to exit. It must not be called from a subscription callback.
func (c *Client) DisposeAll() {
	c.mu.Lock()
	c.closed = true
	subs := make([]*subscription, 0, len(c.cancels))
	for s, cancel := range c.cancels {
		cancel()
		subs = append(subs, s)
	}
	clear(c.cancels)
	c.mu.Unlock()

	for _, s := range subs {
		c.broker.remove(s)
	}
	c.wg.Wait()
}

func (c *Client) publish(coll Collection, ids []string) {
	c.broker.Publish(Change{UserID: c.userID, Collection: coll, IDs: ids})
}
