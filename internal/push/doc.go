// Package push implements the persistent push-connection manager.
//
// The connection is lazy: it is opened by the first Send while closed,
// queues outbound commands until the open completes, drains the queue in
// FIFO order, and closes itself after a configurable idle period with no
// outbound traffic. The queue survives disconnects and explicit closes, so
// commands issued before a drop are retransmitted on the next open; callers
// that want the other policy use DiscardQueued.
//
// Inbound frames are positional JSON arrays decoded into a tagged union
// (heartbeat, ticker, volume, account, per-market book, subscription ack,
// unknown). A malformed frame is logged with its raw payload and skipped;
// it never tears the connection down.
package push
