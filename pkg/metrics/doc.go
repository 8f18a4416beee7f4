// Package metrics exposes toast store activity to Prometheus.
//
// A Collector subscribes to a toast.Store and turns its change stream into
// counters, a gauge of active toasts and a histogram of promise durations.
//
//	reg := prometheus.NewRegistry()
//	c := metrics.New(metrics.WithRegistry(reg))
//	stop := c.Attach(store)
//	defer stop()
//
//	http.Handle("/metrics", c.Handler())
package metrics
