package router

import (
	"sync"

	boom "github.com/tylertreat/BoomFilters"
)

type OperationCount struct {
	Operation string `json:"operation"`
	Count     uint64 `json:"count"`
}

// operationStats approximates the most requested operations.
type operationStats struct {
	mutex *sync.Mutex
	topk  *boom.TopK
}

func newOperationStats() *operationStats {
	return &operationStats{
		mutex: &sync.Mutex{},
		topk:  boom.NewTopK(0.001, 0.99, 8),
	}
}

func (s *operationStats) record(op Operation) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.topk.Add([]byte(op))
}

func (s *operationStats) top() []OperationCount {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	elements := s.topk.Elements()
	counts := make([]OperationCount, 0, len(elements))
	for i := len(elements) - 1; i >= 0; i-- {
		counts = append(counts, OperationCount{
			Operation: string(elements[i].Data),
			Count:     elements[i].Freq,
		})
	}
	return counts
}
