package server

import (
	"outbreak/server/internal/net/proto"
	"outbreak/server/internal/world"
)

// History is the population time series since the last reset. Once limit
// samples are stored the oldest are discarded.
type History struct {
	limit   int
	time    []float64
	humans  []int
	zombies []int
}

func NewHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) Append(report world.Report) {
	h.time = append(h.time, report.Time)
	h.humans = append(h.humans, report.Humans)
	h.zombies = append(h.zombies, report.Zombies)
	if h.limit > 0 && len(h.time) > h.limit {
		drop := len(h.time) - h.limit
		h.time = h.time[drop:]
		h.humans = h.humans[drop:]
		h.zombies = h.zombies[drop:]
	}
}

func (h *History) Clear() {
	h.time = nil
	h.humans = nil
	h.zombies = nil
}

func (h *History) Len() int {
	return len(h.time)
}

// PeakPopulation is the largest count of either kind, at least 1.
func (h *History) PeakPopulation() int {
	peak := 1
	for i := range h.humans {
		peak = max(peak, h.humans[i], h.zombies[i])
	}
	return peak
}

func (h *History) Message() proto.HistoryMessage {
	return proto.HistoryMessage{
		Ver:     proto.Version,
		Type:    proto.TypeHistory,
		Time:    append([]float64{}, h.time...),
		Humans:  append([]int{}, h.humans...),
		Zombies: append([]int{}, h.zombies...),
		Peak:    h.PeakPopulation(),
	}
}
