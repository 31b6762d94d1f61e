package antivirus

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dutchcoders/go-clamd"
)

// ClamdScanner streams uploads to a clamd daemon with INSTREAM.
type ClamdScanner struct {
	client *clamd.Clamd
}

var _ Scanner = (*ClamdScanner)(nil)

// NewClamdScanner accepts "tcp://host:3310", "unix:///var/run/clamav/clamd.ctl"
// or a bare host:port (treated as TCP).
func NewClamdScanner(address string) *ClamdScanner {
	if !strings.Contains(address, "://") && !strings.HasPrefix(address, "/") {
		address = "tcp://" + address
	}
	return &ClamdScanner{client: clamd.NewClamd(address)}
}

func (c *ClamdScanner) Name() string {
	return "clamd"
}

func (c *ClamdScanner) Available(ctx context.Context) bool {
	return c.client.Ping() == nil
}

func (c *ClamdScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	abort := make(chan bool, 1)
	defer close(abort)

	results, err := c.client.ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		result.Infected = true
		result.Error = fmt.Errorf("clamd scan %q: %w", filename, err)
		return result
	}

	for {
		select {
		case <-ctx.Done():
			abort <- true
			result.Infected = true
			result.Error = ctx.Err()
			return result
		case r, ok := <-results:
			if !ok {
				return result
			}
			switch r.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				result.Infected = true
				result.ThreatName = r.Description
			default:
				result.Infected = true
				result.Error = fmt.Errorf("clamd scan %q: %s", filename, r.Raw)
			}
		}
	}
}
