package push

import "time"

// Reserved channel ids on the push endpoint. Any other numeric id denotes a
// per-market order-book subscription.
const (
	ChannelAccount   int64 = 1000
	ChannelTicker    int64 = 1002
	ChannelVolume    int64 = 1003
	ChannelHeartbeat int64 = 1010
)

// Outbound command verbs.
const (
	CommandSubscribe   = "subscribe"
	CommandUnsubscribe = "unsubscribe"
)

// Command is an outbound message on the push connection.
type Command struct {
	Command string `json:"command"`
	Channel int64  `json:"channel"`
}

// Subscribe builds a subscribe command for a channel.
func Subscribe(channel int64) Command {
	return Command{Command: CommandSubscribe, Channel: channel}
}

// Unsubscribe builds an unsubscribe command for a channel.
func Unsubscribe(channel int64) Command {
	return Command{Command: CommandUnsubscribe, Channel: channel}
}

// State is the connection lifecycle state.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// FrameHandler receives decoded inbound frames.
type FrameHandler interface {
	HandleFrame(f Frame)
}

// FrameHandlerFunc is a function adapter for FrameHandler.
type FrameHandlerFunc func(Frame)

func (fn FrameHandlerFunc) HandleFrame(f Frame) { fn(f) }

// Config configures a push connection.
type Config struct {
	URL              string
	IdleClose        time.Duration // Auto-close after this long with no outbound traffic; 0 disables
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		IdleClose:        60 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
