package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Plugin counts writes per table. Rejected writes, constraint violations
// included, land in the error counter instead.
type Plugin struct {
	writes *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Plugin, error) {
	p := &Plugin{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialgram",
			Subsystem: "db",
			Name:      "writes_total",
			Help:      "Successful writes by table and operation.",
		}, []string{"table", "op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialgram",
			Subsystem: "db",
			Name:      "write_errors_total",
			Help:      "Rejected writes by table and operation.",
		}, []string{"table", "op"}),
	}
	if err := reg.Register(p.writes); err != nil {
		return nil, err
	}
	if err := reg.Register(p.errors); err != nil {
		reg.Unregister(p.writes)
		return nil, err
	}
	return p, nil
}

func (p *Plugin) Name() string {
	return "socialgram:metrics"
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("metrics:after_create", p.observe(OpCreate)); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:after_update", p.observe(OpUpdate)); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("metrics:after_delete", p.observe(OpDelete))
}

func (p *Plugin) observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		if db.Error != nil {
			p.errors.WithLabelValues(table, op).Inc()
			return
		}
		p.writes.WithLabelValues(table, op).Inc()
	}
}

// WriteTextfile dumps the gathered metrics in the format read by the
// node-exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
