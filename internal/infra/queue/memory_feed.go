package queue

import (
	"context"
	"sync"

	"github.com/xavierca1/imob-crm/internal/entity"
)

// MemoryFeed é o feed do processo único (modo demo e testes): publicar entrega
// de forma síncrona a todos os assinantes cujo filtro casa.
type MemoryFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]memorySub
}

type memorySub struct {
	filter   entity.ChangeFilter
	onChange func(entity.LeadChange)
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]memorySub)}
}

func (f *MemoryFeed) PublishLeadChange(ctx context.Context, change entity.LeadChange) error {
	f.mu.RLock()
	targets := make([]func(entity.LeadChange), 0, len(f.subs))
	for _, s := range f.subs {
		if s.filter.Match(change) {
			targets = append(targets, s.onChange)
		}
	}
	f.mu.RUnlock()

	for _, fn := range targets {
		fn(change)
	}
	return ctx.Err()
}

func (f *MemoryFeed) Subscribe(filter entity.ChangeFilter, onChange func(entity.LeadChange)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = memorySub{filter: filter, onChange: onChange}
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}
