package workers

// Metrics returns the current pool metrics.
func (p *WorkerPool) Metrics() PoolMetrics {
	p.metricsMu.RLock()
	defer p.metricsMu.RUnlock()
	return p.metrics
}

func (p *WorkerPool) count(update func(m *PoolMetrics)) {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	update(&p.metrics)
}
