package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"fsmonitor/internal/models"
)

const namespace = "fsmonitor"

var intHelp = map[string]string{
	models.FieldFailedBacklog:       "Files waiting in the failed directory, -1 when unknown.",
	models.FieldProcessedBacklog:    "Files in the processed directory, -1 when unknown.",
	models.FieldProcessedAgeMinutes: "Minutes since the newest processed file was written.",
	models.FieldUserFileAgeMinutes:  "Minutes since the users file was written.",
}

var stringHelp = map[string]string{
	models.FieldClientServiceStatus: "Client service status; the current status label is 1.",
	models.FieldPrintServiceStatus:  "Print service status; the current status label is 1.",
}

// Prometheus exposes fields as gauges. String fields become a gauge vector
// labelled by status where only the current status is set.
type Prometheus struct {
	registry *prometheus.Registry
	ints     map[string]prometheus.Gauge
	strings  map[string]*prometheus.GaugeVec

	mu      sync.Mutex
	current map[string]string
}

// NewPrometheus registers every known field on a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		ints:     make(map[string]prometheus.Gauge, len(models.IntFields)),
		strings:  make(map[string]*prometheus.GaugeVec, len(models.StringFields)),
		current:  make(map[string]string),
	}
	for _, name := range models.IntFields {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      intHelp[name],
		})
		p.registry.MustRegister(g)
		p.ints[name] = g
	}
	for _, name := range models.StringFields {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      stringHelp[name],
		}, []string{"status"})
		p.registry.MustRegister(vec)
		p.strings[name] = vec
	}
	return p
}

// Registry returns the registry to serve.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) SetInt(field string, value int) {
	if g, ok := p.ints[field]; ok {
		g.Set(float64(value))
	}
}

func (p *Prometheus) SetString(field string, value string) {
	vec, ok := p.strings[field]
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.current[field]; ok && prev != value {
		vec.DeleteLabelValues(prev)
	}
	p.current[field] = value
	vec.WithLabelValues(value).Set(1)
}
