// Package metrics exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider struct {
	reg *prometheus.Registry

	ProviderCalls    *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
	FallbackUses     prometheus.Counter
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	StaleServes      prometheus.Counter
	Exports          *prometheus.CounterVec
	SiteQueries      prometheus.Counter
	RouteDuration    prometheus.Histogram
}

func Init() *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &Provider{
		reg: reg,
		ProviderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roamroute_provider_calls_total",
				Help: "Route computations attempted per routing provider.",
			},
			[]string{"provider"},
		),
		ProviderFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roamroute_provider_failures_total",
				Help: "Failed route computations per routing provider.",
			},
			[]string{"provider"},
		),
		FallbackUses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "roamroute_fallback_uses_total",
				Help: "Route computations served by the fallback provider.",
			},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roamroute_cache_hits_total",
				Help: "Cache hits per cache.",
			},
			[]string{"cache"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roamroute_cache_misses_total",
				Help: "Cache misses per cache.",
			},
			[]string{"cache"},
		),
		StaleServes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "roamroute_stale_serves_total",
				Help: "Responses served from stale cache after a refresh failure.",
			},
		),
		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roamroute_exports_total",
				Help: "Route exports per output format.",
			},
			[]string{"format"},
		),
		SiteQueries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "roamroute_site_queries_total",
				Help: "Campsite filter queries served.",
			},
		),
		RouteDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "roamroute_route_computation_seconds",
				Help:    "Wall time of route computations, including provider calls.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		p.ProviderCalls,
		p.ProviderFailures,
		p.FallbackUses,
		p.CacheHits,
		p.CacheMisses,
		p.StaleServes,
		p.Exports,
		p.SiteQueries,
		p.RouteDuration,
	)

	return p
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }
