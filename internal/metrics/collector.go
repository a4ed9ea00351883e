package metrics

import (
	"context"
	"runtime"
	"time"

	"book-catalog/internal/logging"
)

// VolumeProber reports whether the storage volume is present.
type VolumeProber interface {
	VolumePresent(ctx context.Context) bool
}

// Collector periodically samples volume presence and runtime memory.
type Collector struct {
	prober   VolumeProber
	interval time.Duration
	stopChan chan struct{}
	present  bool
	sampled  bool
}

// NewCollector creates a new metrics collector
func NewCollector(prober VolumeProber, interval time.Duration) *Collector {
	return &Collector{
		prober:   prober,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	GoMemAllocBytes.Set(float64(m.Alloc))
	GoMemSysBytes.Set(float64(m.Sys))

	if c.prober == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.probeTimeout())
	defer cancel()

	present := c.prober.VolumePresent(ctx)
	if present {
		VolumePresent.Set(1)
	} else {
		VolumePresent.Set(0)
	}

	if c.sampled && present != c.present {
		if present {
			logging.Info("Storage volume inserted")
		} else {
			logging.Info("Storage volume removed")
		}
	}
	c.present, c.sampled = present, true
}

func (c *Collector) probeTimeout() time.Duration {
	if c.interval > 0 && c.interval < 10*time.Second {
		return c.interval
	}
	return 10 * time.Second
}
