package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolStatsCollector(t *testing.T) {
	// Describe works without a live pool; Collect is the only method that
	// touches pool.Stat().
	c := NewPoolStatsCollector(nil, "antiquepox")
	require.NotNil(t, c)
	assert.Equal(t, "antiquepox", c.service)

	var _ prometheus.Collector = c
}

func TestPoolStatsCollector_DescribesAllMetrics(t *testing.T) {
	c := NewPoolStatsCollector(nil, "antiquepox")

	ch := make(chan *prometheus.Desc, 20)
	c.Describe(ch)
	close(ch)

	var descs []string
	for d := range ch {
		descs = append(descs, d.String())
	}
	assert.Len(t, descs, 12)

	all := strings.Join(descs, "\n")
	for _, name := range []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_total_connections",
		"db_pool_max_connections",
		"db_pool_constructing_connections",
		"db_pool_acquire_count_total",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_canceled_acquire_count_total",
		"db_pool_empty_acquire_count_total",
		"db_pool_new_connections_total",
		"db_pool_max_lifetime_destroy_total",
		"db_pool_max_idle_destroy_total",
	} {
		assert.Contains(t, all, name)
	}
}
