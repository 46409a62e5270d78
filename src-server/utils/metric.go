package utils

import "time"

type Metric struct {
	DatabaseRead  chan float64
	DatabaseWrite chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:  make(chan float64, 64),
		DatabaseWrite: make(chan float64, 64),
	}
}

// drops the sample when nobody is collecting
func send(ch chan float64, d time.Duration) {
	select {
	case ch <- float64(d.Microseconds()):
	default:
	}
}

func (m *Metric) ObserveDatabaseRead(d time.Duration) {
	send(m.DatabaseRead, d)
}

func (m *Metric) ObserveDatabaseWrite(d time.Duration) {
	send(m.DatabaseWrite, d)
}
