package antivirus

import (
	"context"
	"errors"
)

var ErrNoScanner = errors.New("antivirus: no scanner available")

// ScanResult is the verdict on one uploaded document.
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
	// Error means the document could not be scanned. Infected is set too,
	// so callers that only look at Infected still reject the upload.
	Error error
}

// Clean reports whether the document may be stored.
func (r ScanResult) Clean() bool {
	return !r.Infected && r.Error == nil
}

// Scanner checks a whole document held in memory. Uploads are capped by
// MAX_UPLOAD_BYTES before they reach a scanner.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner reports every document clean. Used when CLAMD_ADDRESS is unset.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}

// ChainScanner tries its scanners in order. A scanner that is down or errors
// hands over to the next one; a detection is final. With nothing left to try
// the document is rejected.
type ChainScanner struct {
	scanners []Scanner
}

var _ Scanner = (*ChainScanner)(nil)

func NewChainScanner(scanners ...Scanner) *ChainScanner {
	return &ChainScanner{scanners: scanners}
}

func (c *ChainScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	last := ScanResult{Infected: true, ScannerName: c.Name(), Error: ErrNoScanner}
	for _, s := range c.scanners {
		if !s.Available(ctx) {
			continue
		}
		res := s.Scan(ctx, filename, data)
		if res.Error == nil {
			return res
		}
		last = res
		if ctx.Err() != nil {
			break
		}
	}
	return last
}

func (c *ChainScanner) Name() string {
	return "chain"
}

func (c *ChainScanner) Available(ctx context.Context) bool {
	for _, s := range c.scanners {
		if s.Available(ctx) {
			return true
		}
	}
	return false
}
