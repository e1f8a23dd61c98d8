package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// Client is the portal's data access entry point. Every store shares the same
// connection, so a Client returned by WithTx scopes all of them to one
// transaction.
type Client struct {
	driver dialect.Driver
	conn   dialect.ExecQuerier

	Identities       *IdentityStore
	Patients         *PatientStore
	ActivationTokens *ActivationTokenStore
	ShareLinks       *ShareLinkStore
	Exams            *ExamStore
	Recommendations  *RecommendationStore
	News             *NewsStore
	NotificationLogs *NotificationLogStore
}

// NewClient wraps an ent SQL driver.
func NewClient(drv dialect.Driver) *Client {
	return newClient(drv, drv)
}

func newClient(drv dialect.Driver, conn dialect.ExecQuerier) *Client {
	c := &Client{driver: drv, conn: conn}
	q := querier{conn: conn, dialect: drv.Dialect()}
	c.Identities = &IdentityStore{q}
	c.Patients = &PatientStore{q}
	c.ActivationTokens = &ActivationTokenStore{q}
	c.ShareLinks = &ShareLinkStore{q}
	c.Exams = &ExamStore{q}
	c.Recommendations = &RecommendationStore{q}
	c.News = &NewsStore{q}
	c.NotificationLogs = &NotificationLogStore{q}
	return c
}

// Driver returns the underlying driver, used by migrations.
func (c *Client) Driver() dialect.Driver { return c.driver }

func (c *Client) Dialect() string { return c.driver.Dialect() }

func (c *Client) Close() error { return c.driver.Close() }

// Ping checks that the database answers.
func (c *Client) Ping(ctx context.Context) error {
	if d, ok := c.driver.(*entsql.Driver); ok {
		return d.DB().PingContext(ctx)
	}
	rows := &entsql.Rows{}
	if err := c.conn.Query(ctx, "SELECT 1", []any{}, rows); err != nil {
		return err
	}
	return rows.Close()
}

// WithTx runs fn inside a transaction. The Client passed to fn must be used
// for every statement that belongs to the transaction.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	if _, ok := c.conn.(dialect.Tx); ok {
		return fn(c)
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(newClient(c.driver, tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NewID returns a time-ordered UUIDv7.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// Now is the timestamp convention for stored times: UTC, microsecond precision.
func Now() time.Time { return Timestamp(time.Now()) }

// Timestamp normalises t the same way Now does.
func Timestamp(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }
