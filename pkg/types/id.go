package types

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MaxChartIDLength bounds ids accepted from clients.
const MaxChartIDLength = 64

const (
	timestampWidth = 10 // base36 digits for a 48-bit millisecond timestamp
	randomWidth    = 8  // base36 digits for 40 random bits
	randomMask     = 1<<40 - 1
)

// ChartIDGenerator produces lowercase base36 chart ids that sort by creation
// time. Ids generated within the same millisecond are monotonically increasing.
// Format: 10 digits of millisecond timestamp + 8 digits of random suffix.
type ChartIDGenerator struct {
	mu            sync.Mutex
	lastTimestamp uint64
	lastRandom    uint64
}

// NewChartIDGenerator creates a new chart id generator.
func NewChartIDGenerator() *ChartIDGenerator {
	return &ChartIDGenerator{}
}

// Generate creates a new id with the current timestamp.
func (g *ChartIDGenerator) Generate() (string, error) {
	return g.GenerateWithTime(time.Now())
}

// GenerateWithTime creates a new id with the specified timestamp.
func (g *ChartIDGenerator) GenerateWithTime(t time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := uint64(t.UnixMilli())

	if timestamp == g.lastTimestamp && g.lastRandom < randomMask {
		g.lastRandom++
	} else {
		var buf [8]byte
		if _, err := rand.Read(buf[3:]); err != nil {
			return "", err
		}
		// Leave headroom so increments within a millisecond do not overflow.
		g.lastRandom = (binary.BigEndian.Uint64(buf[:]) & randomMask) >> 1
		g.lastTimestamp = timestamp
	}

	return pad36(timestamp, timestampWidth) + pad36(g.lastRandom, randomWidth), nil
}

func pad36(v uint64, width int) string {
	s := strconv.FormatUint(v, 36)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// ValidateChartID checks that a client-supplied id is usable as a store key,
// an object-storage path segment and a URL path segment.
func ValidateChartID(id string) error {
	if id == "" {
		return ErrEmptyChartID
	}
	if len(id) > MaxChartIDLength {
		return ErrChartIDTooLong
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return ErrInvalidChartIDCharacter
		}
	}
	return nil
}

var defaultIDs = NewChartIDGenerator()

// NewChartID returns an id from the process-wide generator.
func NewChartID() string {
	id, err := defaultIDs.Generate()
	if err != nil {
		// crypto/rand failing is unrecoverable for id generation; fall back to time only.
		return pad36(uint64(time.Now().UnixNano()), timestampWidth+randomWidth)
	}
	return id
}
