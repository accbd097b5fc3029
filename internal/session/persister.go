package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pixenhq/pixen/internal/log"
)

// persister is the fire-and-forget durable-write policy: mutations are
// applied to the in-memory collection synchronously and mirrored to the
// store from a single worker goroutine. Write failures are logged and
// swallowed; the in-memory state is never rolled back. Accepted tradeoff:
// data loss on process crash before a later successful write.
type persister struct {
	store *Store
	ops   chan storeOp
	once  sync.Once
	done  chan struct{}
}

type storeOp struct {
	put      *Session // already cloned by the caller
	deleteID string
}

func newPersister(store *Store) *persister {
	p := &persister{
		store: store,
		ops:   make(chan storeOp, 64),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for op := range p.ops {
		switch {
		case op.put != nil:
			if err := p.store.Put(op.put); err != nil {
				log.Logger().Warn("session write failed",
					zap.String("id", op.put.ID), zap.Error(err))
			}
		case op.deleteID != "":
			if err := p.store.Delete(op.deleteID); err != nil {
				log.Logger().Warn("session delete failed",
					zap.String("id", op.deleteID), zap.Error(err))
			}
		}
	}
}

// enqueue never blocks the caller: when the queue is saturated the write
// is dropped and logged, trading durability for availability.
func (p *persister) enqueue(op storeOp) {
	select {
	case p.ops <- op:
	default:
		log.Logger().Warn("persist queue full, dropping write")
	}
}

func (p *persister) put(s *Session) {
	p.enqueue(storeOp{put: s})
}

func (p *persister) delete(id string) {
	p.enqueue(storeOp{deleteID: id})
}

// close drains pending writes before returning.
func (p *persister) close() {
	p.once.Do(func() {
		close(p.ops)
		<-p.done
	})
}
