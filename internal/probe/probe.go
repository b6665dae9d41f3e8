// Package probe samples the current process's resource usage while a
// benchmark trial runs.
package probe

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// Peak is the resource high-water mark observed over a monitoring window.
type Peak struct {
	WallTime       time.Duration
	MaxResidentKB  uint64
	MaxHeapAllocKB uint64
	CPUSeconds     float64
}

// Monitor samples the process at a fixed interval and tracks peaks.
// Resident memory and CPU time come from /proc when available; heap
// figures come from the Go runtime everywhere.
type Monitor struct {
	interval time.Duration
	start    time.Time
	startCPU float64

	proc   procfs.Proc
	hasFS  bool
	stopCh chan struct{}
	done   sync.WaitGroup

	mu   sync.Mutex
	peak Peak
}

// Start begins sampling. A non-positive interval falls back to 100ms, the
// cadence the original monitoring harness used.
func Start(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	m := &Monitor{
		interval: interval,
		start:    time.Now(),
		stopCh:   make(chan struct{}),
	}
	if p, err := procfs.Self(); err == nil {
		m.proc = p
		m.hasFS = true
		if stat, err := p.Stat(); err == nil {
			m.startCPU = stat.CPUTime()
		}
	}
	m.sample()
	m.done.Add(1)
	go m.loop()
	return m
}

func (m *Monitor) loop() {
	defer m.done.Done()
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-t.C:
			m.sample()
		}
	}
}

func (m *Monitor) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.mu.Lock()
	defer m.mu.Unlock()
	if heapKB := ms.HeapAlloc / 1024; heapKB > m.peak.MaxHeapAllocKB {
		m.peak.MaxHeapAllocKB = heapKB
	}
	if !m.hasFS {
		return
	}
	stat, err := m.proc.Stat()
	if err != nil {
		return
	}
	if rssKB := uint64(stat.ResidentMemory()) / 1024; rssKB > m.peak.MaxResidentKB {
		m.peak.MaxResidentKB = rssKB
	}
	if cpu := stat.CPUTime() - m.startCPU; cpu > m.peak.CPUSeconds {
		m.peak.CPUSeconds = cpu
	}
}

// Stop ends sampling and returns the observed peaks.
func (m *Monitor) Stop() Peak {
	close(m.stopCh)
	m.done.Wait()
	m.sample()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.peak.WallTime = time.Since(m.start)
	return m.peak
}
