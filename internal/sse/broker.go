// Package sse implements a Server-Sent Events broker that pushes store
// notifications to connected clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/luach/internal/agenda"
	"github.com/starford/luach/internal/models"
)

// Message is a single SSE frame. A message with a Category only reaches
// clients whose selection includes it; an empty Category reaches everyone.
type Message struct {
	Type     string          `json:"type"`
	Data     any             `json:"data"`
	Category models.Category `json:"-"`
}

// Change kinds accepted by PublishChange.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

type changeReq struct {
	kind   string
	events []models.Event
}

type changeFrame struct {
	ID       string          `json:"id"`
	Category models.Category `json:"category"`
	Date     string          `json:"gregorian_date"`
}

// client is one stream. Each client has its own calendar.updated throttle so
// a burst in one category does not starve clients watching another.
type client struct {
	ch           chan []byte
	sel          agenda.Selector
	lastCalendar time.Time
	dropped      int
}

type subscribeReq struct {
	ch  chan []byte
	sel agenda.Selector
}

// Broker manages SSE client connections and broadcasts messages.
//
// A single loop goroutine owns the client set; public methods talk to it
// over channels.
type Broker struct {
	calendarMin time.Duration

	subscribeCh   chan subscribeReq
	unsubscribeCh chan chan []byte
	publishCh     chan Message
	changeCh      chan changeReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits calendar.updated to each client at
// most once per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		calendarMin:   throttle,
		subscribeCh:   make(chan subscribeReq),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Message, 256),
		changeCh:      make(chan changeReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func frame(msg Message) ([]byte, bool) {
	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return nil, false
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", msg.Type, payload)), true
}

// send queues raw for c. A full buffer drops the frame; the next frame that
// fits is preceded by a resync hint so the client refetches instead of
// trusting a gapped stream.
func (c *client) send(raw []byte) {
	if c.dropped > 0 {
		hint, _ := frame(Message{Type: "stream.resync", Data: map[string]int{"dropped": c.dropped}})
		select {
		case c.ch <- hint:
			c.dropped = 0
		default:
			c.dropped++
			return
		}
	}
	select {
	case c.ch <- raw:
	default:
		c.dropped++
	}
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]*client)

	deliver := func(msg Message) {
		raw, ok := frame(msg)
		if !ok {
			return
		}
		for _, c := range clients {
			if msg.Category == "" || c.sel.Includes(msg.Category) {
				c.send(raw)
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case req := <-b.subscribeCh:
			clients[req.ch] = &client{ch: req.ch, sel: req.sel}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case msg := <-b.publishCh:
			deliver(msg)

		case req := <-b.changeCh:
			switch req.kind {
			case ChangeCreated, ChangeUpdated, ChangeDeleted:
			default:
				continue
			}
			for _, ev := range req.events {
				deliver(Message{
					Type:     "event." + req.kind,
					Data:     changeFrame{ID: ev.ID, Category: ev.Category, Date: ev.GregorianDate},
					Category: ev.Category,
				})
			}

			now := time.Now()
			hint, _ := frame(Message{Type: "calendar.updated", Data: map[string]string{}})
			for _, c := range clients {
				if !touches(c.sel, req.events) || now.Sub(c.lastCalendar) < b.calendarMin {
					continue
				}
				c.lastCalendar = now
				c.send(hint)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func touches(sel agenda.Selector, events []models.Event) bool {
	for _, ev := range events {
		if sel.Includes(ev.Category) {
			return true
		}
	}
	return false
}

// Close stops the loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client that receives messages for sel and returns its
// channel.
func (b *Broker) Subscribe(sel agenda.Selector) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscribeReq{ch: ch, sel: sel}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends msg to the clients whose selection includes it.
func (b *Broker) Publish(msg Message) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- msg:
	case <-b.stopped:
	}
}

// PublishChange announces created, updated or deleted events and a throttled
// calendar.updated hint to the clients watching their categories.
func (b *Broker) PublishChange(kind string, events ...models.Event) {
	if b.closed.Load() || len(events) == 0 {
		return
	}
	select {
	case b.changeCh <- changeReq{kind: kind, events: events}:
	case <-b.stopped:
	}
}

// ServeHTTP streams messages to one client until it disconnects. The
// optional ?category= parameter narrows the stream like the list views.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sel, err := agenda.ParseSelector(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(sel)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
