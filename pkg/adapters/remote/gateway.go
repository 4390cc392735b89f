package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/aretw0/notelink/pkg/core"
)

// Wire operations of the sync gateway's JSON frame protocol.
const (
	opGet      = "get"
	opSet      = "set"
	opUpdate   = "update"
	opDelete   = "delete"
	opListen   = "listen"
	opUnlisten = "unlisten"
)

// Error codes the gateway reports per request.
const (
	codeNotFound = "not_found"
	codeRejected = "rejected"
)

// frame is both request and response shape. Requests carry Op and Seq;
// responses echo Seq; listener pushes carry Watch and Docs instead.
type frame struct {
	Op         string         `json:"op,omitempty"`
	Seq        uint64         `json:"seq,omitempty"`
	Collection string         `json:"collection,omitempty"`
	ID         string         `json:"id,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
	Filter     *Filter        `json:"filter,omitempty"`

	Error string    `json:"error,omitempty"`
	Code  string    `json:"code,omitempty"`
	Doc   *Document `json:"doc,omitempty"`

	Watch uint64     `json:"watch,omitempty"`
	Docs  []Document `json:"docs,omitempty"`
}

// GatewayClient implements DocumentClient over a single websocket
// connection to the sync gateway. Requests are correlated by sequence
// number; the gateway pushes full result sets for every active listener
// whenever the underlying collection changes.
//
// There is no transparent reconnect: once the connection drops, every
// operation fails with core.ErrBackendUnavailable and listener channels
// close. Retry policy belongs to the caller.
type GatewayClient struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	lastSeq uint64
	pending map[uint64]chan frame
	watches map[uint64]chan []Document
	closed  bool
	done    chan struct{}
}

// DialGateway connects to the gateway. The connection lives until Close or
// a read failure; ctx only bounds the dial.
func DialGateway(ctx context.Context, url string, logger *slog.Logger) (*GatewayClient, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", core.ErrBackendUnavailable, url, err)
	}
	c := &GatewayClient{
		conn:    conn,
		logger:  logger,
		pending: make(map[uint64]chan frame),
		watches: make(map[uint64]chan []Document),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close tears the connection down and fails all in-flight work.
func (c *GatewayClient) Close() error {
	c.fail(fmt.Errorf("client closed"))
	return nil
}

func (c *GatewayClient) readLoop() {
	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			c.fail(err)
			return
		}
		c.dispatch(f)
	}
}

func (c *GatewayClient) dispatch(f frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Seq != 0 {
		if ch, ok := c.pending[f.Seq]; ok {
			delete(c.pending, f.Seq)
			ch <- f
		}
		return
	}
	if f.Watch != 0 {
		if ch, ok := c.watches[f.Watch]; ok {
			sendLatestDocs(ch, f.Docs)
		}
		return
	}
	c.logger.Debug("dropping unroutable frame", "op", f.Op)
}

// sendLatestDocs delivers on a capacity-1 channel, displacing an unread
// older snapshot so a slow consumer only skips intermediate states.
func sendLatestDocs(ch chan []Document, docs []Document) {
	for {
		select {
		case ch <- docs:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// fail marks the client dead: pending requests unblock via done, listener
// channels close, the socket closes.
func (c *GatewayClient) fail(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	for id, ch := range c.watches {
		delete(c.watches, id)
		close(ch)
	}
	c.mu.Unlock()

	c.logger.Debug("gateway connection closed", "error", err)
	_ = c.conn.Close()
}

func (c *GatewayClient) request(ctx context.Context, f frame) (frame, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return frame{}, core.ErrBackendUnavailable
	}
	c.lastSeq++
	f.Seq = c.lastSeq
	ch := make(chan frame, 1)
	c.pending[f.Seq] = ch
	c.mu.Unlock()

	if err := c.writeFrame(f); err != nil {
		c.dropPending(f.Seq)
		return frame{}, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}

	select {
	case resp := <-ch:
		return resp, respError(resp)
	case <-c.done:
		return frame{}, core.ErrBackendUnavailable
	case <-ctx.Done():
		c.dropPending(f.Seq)
		return frame{}, ctx.Err()
	}
}

func (c *GatewayClient) writeFrame(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(f)
}

func (c *GatewayClient) dropPending(seq uint64) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()
}

func respError(resp frame) error {
	switch resp.Code {
	case "":
		return nil
	case codeNotFound:
		return core.ErrNotFound
	case codeRejected:
		return fmt.Errorf("%w: %s", core.ErrWriteRejected, resp.Error)
	default:
		return fmt.Errorf("gateway error %s: %s", resp.Code, resp.Error)
	}
}

func (c *GatewayClient) Get(ctx context.Context, collection, id string) (Document, error) {
	resp, err := c.request(ctx, frame{Op: opGet, Collection: collection, ID: id})
	if err != nil {
		return Document{}, err
	}
	if resp.Doc == nil {
		return Document{}, core.ErrNotFound
	}
	return *resp.Doc, nil
}

func (c *GatewayClient) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := c.request(ctx, frame{Op: opSet, Collection: collection, ID: id, Fields: fields})
	return err
}

func (c *GatewayClient) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := c.request(ctx, frame{Op: opUpdate, Collection: collection, ID: id, Fields: fields})
	return err
}

func (c *GatewayClient) Delete(ctx context.Context, collection, id string) error {
	_, err := c.request(ctx, frame{Op: opDelete, Collection: collection, ID: id})
	return err
}

// Listen registers a server-side watch. The watch id is the listen
// request's own sequence number; the channel is registered before the
// frame goes out so the first push cannot be missed.
func (c *GatewayClient) Listen(ctx context.Context, collection string, filter Filter) (<-chan []Document, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, core.ErrBackendUnavailable
	}
	c.lastSeq++
	seq := c.lastSeq
	ack := make(chan frame, 1)
	c.pending[seq] = ack
	out := make(chan []Document, 1)
	c.watches[seq] = out
	c.mu.Unlock()

	unregister := func() {
		c.mu.Lock()
		if _, ok := c.watches[seq]; ok {
			delete(c.watches, seq)
			close(out)
		}
		c.mu.Unlock()
	}

	f := frame{Op: opListen, Seq: seq, Collection: collection, Filter: &filter}
	if err := c.writeFrame(f); err != nil {
		c.dropPending(seq)
		unregister()
		return nil, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}

	select {
	case resp := <-ack:
		if err := respError(resp); err != nil {
			unregister()
			return nil, err
		}
	case <-c.done:
		return nil, core.ErrBackendUnavailable
	case <-ctx.Done():
		c.dropPending(seq)
		unregister()
		return nil, ctx.Err()
	}

	go func() {
		select {
		case <-ctx.Done():
			unregister()
			// Best effort: the gateway also drops watches on disconnect.
			_ = c.writeFrame(frame{Op: opUnlisten, Watch: seq})
		case <-c.done:
		}
	}()
	return out, nil
}
