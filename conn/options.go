package conn

import (
	"log"
	"os"
	"time"
)

// Logger is the subset of *log.Logger this package needs, letting
// callers plug in any structured logger that implements Printf.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Limits bounds the resource consumption a single connection will
// accept, the settings-negotiable and locally-enforced limits of
// RFC 7540 §5.1.2, §6.5.2 and §4.4.
type Limits struct {
	// MaxConcurrentStreams is advertised to the peer in the initial
	// SETTINGS frame (RFC 7540 §5.1.2). Conn does not itself refuse
	// peer streams opened beyond it.
	MaxConcurrentStreams uint32

	// MaxFrameSize caps any single frame's payload (RFC 7540 §4.2).
	MaxFrameSize uint32

	// InitialWindowSize is SETTINGS_INITIAL_WINDOW_SIZE, applied to
	// every stream's send window at creation (RFC 7540 §6.5.2).
	InitialWindowSize uint32

	// MaxHeaderBlockSize is filled in by defaults() but not read by
	// Conn: reassembled HEADERS/CONTINUATION sequences are capped by
	// assembler.MaxHeaderBlockSize whatever this field holds.
	MaxHeaderBlockSize uint32

	// MaxHeaderListSize is SETTINGS_MAX_HEADER_LIST_SIZE, advertised
	// to the peer but enforced by the HPACK collaborator.
	MaxHeaderListSize uint32
}

func (l *Limits) defaults() {
	if l.MaxConcurrentStreams == 0 {
		l.MaxConcurrentStreams = 250
	}
	if l.MaxFrameSize == 0 {
		l.MaxFrameSize = 1 << 14
	}
	if l.InitialWindowSize == 0 {
		l.InitialWindowSize = 1 << 16
	}
	if l.MaxHeaderBlockSize == 0 {
		l.MaxHeaderBlockSize = 400 * 1024
	}
	if l.MaxHeaderListSize == 0 {
		l.MaxHeaderListSize = 1 << 20
	}
}

// Options configures a Conn. Zero-value fields take the defaults
// defaults() fills in.
type Options struct {
	// PingInterval is how often the connection pings an idle peer to
	// verify liveness. Zero uses DefaultPingInterval.
	PingInterval time.Duration

	// IdleTimeout is not read by Conn; no idle check is performed and
	// the connection is never closed for inactivity.
	IdleTimeout time.Duration

	// Limits bounds resource consumption; see Limits.
	Limits Limits

	// Logger receives diagnostic lines, only when Debug is set; nothing
	// is logged otherwise. A nil Logger defaults to
	// log.New(os.Stdout, "[http2] ", log.LstdFlags).
	Logger Logger

	// Debug enables verbose per-frame logging.
	Debug bool

	// OnDisconnect, if set, is called once the connection's goroutines
	// have all exited.
	OnDisconnect func(*Conn)
}

// DefaultPingInterval is the keep-alive cadence used when
// Options.PingInterval is left zero.
const DefaultPingInterval = 30 * time.Second

func (o *Options) defaults() {
	if o.PingInterval == 0 {
		o.PingInterval = DefaultPingInterval
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stdout, "[http2] ", log.LstdFlags)
	}
	o.Limits.defaults()
}
