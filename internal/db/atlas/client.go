// Package atlas implements the db interfaces on MongoDB Atlas Vector Search.
package atlas

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/travellive/tourquery/internal/db"
)

// Compile-time check: Client implements db.Conn.
var _ db.Conn = (*Client)(nil)

const appName = "tourquery"

// Client wraps a connected mongo.Client.
type Client struct {
	client *mongo.Client
}

// Dial connects to uri and pings the primary. Server selection gives up after
// timeout. A client that cannot reach the primary is disconnected before returning.
func Dial(ctx context.Context, uri string, timeout time.Duration) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}

	return &Client{client: client}, nil
}

// Ping checks connectivity to the primary.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Collection returns a handle to database.name.
func (c *Client) Collection(database, name string) db.Collection {
	return &collection{coll: c.client.Database(database).Collection(name)}
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx) //nolint:wrapcheck // pass-through
}
