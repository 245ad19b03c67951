package client

import (
	"io"
	"sync"
)

// ProgressFunc receives upload progress as an integer percentage in [0, 100].
// Values are strictly increasing within one upload.
type ProgressFunc func(percent int)

// progressReader counts bytes handed to the transport and reports the
// percentage of total each time it grows.
type progressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu   sync.Mutex
	read int64
	last int
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *progressReader) advance(n int64) {
	if p.fn == nil || p.total <= 0 {
		return
	}

	p.mu.Lock()
	p.read += n
	pct := percent(p.read, p.total)
	if pct <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = pct
	p.mu.Unlock()

	p.fn(pct)
}

// percent rounds sent/total to the nearest integer percentage, capped at 100
func percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	if sent >= total {
		return 100
	}
	return int((sent*100 + total/2) / total)
}
