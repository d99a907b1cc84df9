package job

import (
	"context"

	"github.com/aquatel/aquatel/internal/gateway"
	"github.com/aquatel/aquatel/pkg/types"
)

// SQLGateway adapts the gateway package to the Runner's contract.
type SQLGateway struct {
	// Params configure the connection attempt made each run.
	Params gateway.ConnectParams

	// Bootstrap creates the target table on connect when absent.
	// Local development only.
	Bootstrap bool
}

// Connect opens a session for one run.
func (g *SQLGateway) Connect(ctx context.Context) (Conn, error) {
	conn, err := gateway.Connect(ctx, g.Params)
	if err != nil {
		return nil, err
	}
	if g.Bootstrap {
		if err := gateway.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return &sqlConn{conn: conn}, nil
}

type sqlConn struct {
	conn *gateway.Conn
}

func (c *sqlConn) Insert(ctx context.Context, records []types.Observation) error {
	return gateway.InsertBatch(ctx, c.conn, records)
}

func (c *sqlConn) Close() error {
	return c.conn.Close()
}
