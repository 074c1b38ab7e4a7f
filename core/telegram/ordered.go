package telegram

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// OrderedPoller wraps a poller so that updates of one sender are processed
// one at a time in arrival order, while different senders run in parallel.
// The bot must be built with Settings.Synchronous so ProcessUpdate returns
// only after the handler finished.
type OrderedPoller struct {
	Poller tele.Poller

	// process defaults to (*tele.Bot).ProcessUpdate.
	process func(*tele.Bot, tele.Update)
}

// Poll runs the wrapped poller and fans its updates out to per-sender queues.
// It returns after stop is closed, the wrapped poller returned and every
// queued update was processed.
func (p *OrderedPoller) Poll(b *tele.Bot, _ chan tele.Update, stop chan struct{}) {
	process := p.process
	if process == nil {
		process = (*tele.Bot).ProcessUpdate
	}
	q := newSenderQueues(func(u tele.Update) { process(b, u) })

	in := make(chan tele.Update, 100)
	innerStop := make(chan struct{})
	innerDone := make(chan struct{})
	go func() {
		p.Poller.Poll(b, in, innerStop)
		close(innerDone)
	}()

	for {
		select {
		case u := <-in:
			q.push(senderOf(b, u), u)
		case <-stop:
			close(innerStop)
			// The wrapped poller may still be blocked on a send.
			for done := false; !done; {
				select {
				case u := <-in:
					q.push(senderOf(b, u), u)
				case <-innerDone:
					done = true
				}
			}
			for len(in) > 0 {
				u := <-in
				q.push(senderOf(b, u), u)
			}
			q.wait()
			return
		}
	}
}

func senderOf(b *tele.Bot, u tele.Update) int64 {
	if user := tele.NewContext(b, u).Sender(); user != nil {
		return user.ID
	}
	return 0
}

// senderQueues keeps a FIFO of pending updates per sender. A drain goroutine
// exists for a sender exactly while its entry is present in pending.
type senderQueues struct {
	run func(tele.Update)

	mu      sync.Mutex
	pending map[int64][]tele.Update
	wg      sync.WaitGroup
}

func newSenderQueues(run func(tele.Update)) *senderQueues {
	return &senderQueues{run: run, pending: make(map[int64][]tele.Update)}
}

func (q *senderQueues) push(id int64, u tele.Update) {
	if id == 0 {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.run(u)
		}()
		return
	}

	q.mu.Lock()
	list, active := q.pending[id]
	q.pending[id] = append(list, u)
	q.mu.Unlock()
	if active {
		return
	}
	q.wg.Add(1)
	go q.drain(id)
}

func (q *senderQueues) drain(id int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		list := q.pending[id]
		if len(list) == 0 {
			delete(q.pending, id)
			q.mu.Unlock()
			return
		}
		u := list[0]
		q.pending[id] = list[1:]
		q.mu.Unlock()

		q.run(u)
	}
}

func (q *senderQueues) wait() { q.wg.Wait() }
