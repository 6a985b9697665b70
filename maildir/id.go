package maildir

import (
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
)

// IDGenerator creates message ids that are unique within the process and
// very unlikely to collide across processes or hosts.
//
// Format: seconds.M<microseconds>P<pid>Q<counter>.<host>
// Example: 1705678901.M123456P12345Q1.3f2a9c0d11e4b7a6
type IDGenerator struct {
	// counter breaks ties between ids generated in the same clock tick.
	counter uint64
	pid     int
	host    string
	now     func() time.Time
}

// NewIDGenerator returns a generator whose ids carry a token derived from
// hostname.
func NewIDGenerator(hostname string) *IDGenerator {
	return &IDGenerator{
		pid:  os.Getpid(),
		host: hostToken(hostname),
		now:  time.Now,
	}
}

// Generate returns a new unique message id. It is safe for concurrent use.
func (g *IDGenerator) Generate() string {
	now := g.now()
	counter := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%d.M%dP%dQ%d.%s",
		now.Unix(),
		now.Nanosecond()/1000,
		g.pid,
		counter,
		g.host,
	)
}

// hostToken hashes the hostname so the result is filename-safe whatever
// characters the hostname holds.
func hostToken(hostname string) string {
	sum := blake2b.Sum256([]byte(hostname))
	return hex.EncodeToString(sum[:8])
}

var defaultGenerator = NewIDGenerator(getHostname())

// GenerateID returns a new unique message id from the process-wide generator.
func GenerateID() string {
	return defaultGenerator.Generate()
}

// getHostname returns the system hostname.
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hostname
}
