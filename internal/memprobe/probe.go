// Package memprobe reports the resident memory of the current process.
package memprobe

import (
	"fmt"

	"github.com/prometheus/procfs"

	"github.com/daryltucker/model-harness/internal/model"
)

const bytesPerMB = 1024 * 1024

// Probe reads current resident memory in MiB.
type Probe interface {
	CurrentResidentMemoryMB() (float64, error)
}

// Func adapts a plain function to Probe.
type Func func() (float64, error)

func (f Func) CurrentResidentMemoryMB() (float64, error) { return f() }

// Procfs reads RSS from /proc/self/stat.
type Procfs struct {
	fs procfs.FS
}

// NewProcfs opens the proc filesystem at mountPoint ("" for /proc).
func NewProcfs(mountPoint string) (*Procfs, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMemoryUnavailable, err)
	}
	return &Procfs{fs: fs}, nil
}

func (p *Procfs) CurrentResidentMemoryMB() (float64, error) {
	self, err := p.fs.Self()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrMemoryUnavailable, err)
	}
	stat, err := self.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrMemoryUnavailable, err)
	}
	return float64(stat.ResidentMemory()) / bytesPerMB, nil
}

// Noop always reports that memory figures are unavailable.
type Noop struct{}

func (Noop) CurrentResidentMemoryMB() (float64, error) {
	return 0, model.ErrMemoryUnavailable
}

// Default returns a procfs probe, or Noop where /proc is missing.
func Default() Probe {
	p, err := NewProcfs("")
	if err != nil {
		return Noop{}
	}
	if _, err := p.CurrentResidentMemoryMB(); err != nil {
		return Noop{}
	}
	return p
}
