package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/gateway/internal/protocol"
	"github.com/shubham-shewale/stock-dashboard/cmd/gateway/internal/repository"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

type ClientInterface interface {
	ID() string
	SendJSON(v any)
	SendBytes(b []byte)
	Close()
}

// Hub fans ticks out to subscribed clients. Upstream feed subscriptions are
// reference counted so each symbol is subscribed once however many clients watch it.
type Hub struct {
	subscribers map[string]map[ClientInterface]bool
	clientSubs  map[ClientInterface]map[string]bool

	store        repository.TickStore
	logger       *zap.Logger
	validTickers map[string]bool
	mu           sync.RWMutex
	refCount     map[string]int
}

func NewHub(ctx context.Context, store repository.TickStore, logger *zap.Logger, validTickers []string) *Hub {
	h := &Hub{
		subscribers:  make(map[string]map[ClientInterface]bool),
		clientSubs:   make(map[ClientInterface]map[string]bool),
		store:        store,
		logger:       logger,
		validTickers: make(map[string]bool, len(validTickers)),
		refCount:     make(map[string]int),
	}
	for _, t := range validTickers {
		h.validTickers[t] = true
	}

	go h.store.RunPubSub(ctx, h.Broadcast)

	return h
}

func (h *Hub) HandleCommand(client ClientInterface, req protocol.WSRequest) {
	switch req.Action {
	case protocol.ActionSubscribe:
		h.handleSubscribe(client, req)
	case protocol.ActionUnsubscribe:
		h.handleUnsubscribe(client, req)
	case protocol.ActionUnsubscribeAll:
		h.handleUnsubscribeAll(client, req)
	case protocol.ActionSymbols:
		h.handleSymbols(client, req)
	default:
		h.sendError(client, req.ID, "Unknown action: "+req.Action)
	}
}

func (h *Hub) handleSubscribe(client ClientInterface, req protocol.WSRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var valid []string
	for _, s := range req.Payload.Symbols {
		if !h.validTickers[s] {
			continue
		}
		// already subscribed
		if h.clientSubs[client] != nil && h.clientSubs[client][s] {
			continue
		}
		valid = append(valid, s)
	}

	if len(valid) == 0 {
		h.sendError(client, req.ID, "No valid/new symbols provided")
		return
	}

	if h.clientSubs[client] == nil {
		h.clientSubs[client] = make(map[string]bool)
	}

	for _, sym := range valid {
		h.clientSubs[client][sym] = true
		if h.subscribers[sym] == nil {
			h.subscribers[sym] = make(map[ClientInterface]bool)
		}
		h.subscribers[sym][client] = true

		h.refCount[sym]++
		if h.refCount[sym] == 1 {
			if err := h.store.SubscribeToFeed(context.Background(), sym); err != nil {
				h.logger.Error("Failed to subscribe upstream", zap.String("symbol", sym), zap.Error(err))
			}
		}
	}

	h.sendAck(client, req.ID, fmt.Sprintf("Subscribed to %v", valid))

	// snapshots go out without holding the lock
	go func(targets []string) {
		snapshots, err := h.store.GetSnapshots(context.Background(), targets)
		if err != nil {
			h.logger.Warn("Snapshot fetch failed", zap.Strings("symbols", targets), zap.Error(err))
			return
		}
		for _, snap := range snapshots {
			if msg, ok := h.tickMessage(snap); ok {
				client.SendBytes(msg)
			}
		}
	}(valid)
}

func (h *Hub) handleUnsubscribe(client ClientInterface, req protocol.WSRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var removed []string
	if subs, ok := h.clientSubs[client]; ok {
		for _, sym := range req.Payload.Symbols {
			if subs[sym] {
				delete(subs, sym)
				delete(h.subscribers[sym], client)
				removed = append(removed, sym)
				h.decreaseRefCount(sym)
			}
		}
	}

	if len(removed) > 0 {
		h.sendAck(client, req.ID, fmt.Sprintf("Unsubscribed from %v", removed))
	} else {
		h.sendError(client, req.ID, fmt.Sprintf("Not subscribed to: %v", req.Payload.Symbols))
	}
}

func (h *Hub) handleUnsubscribeAll(client ClientInterface, req protocol.WSRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.clientSubs[client]; ok {
		for sym := range subs {
			delete(h.subscribers[sym], client)
			h.decreaseRefCount(sym)
		}
		// keep the client registered with an empty set
		h.clientSubs[client] = make(map[string]bool)
	}
	h.sendAck(client, req.ID, "Unsubscribed from all symbols")
}

func (h *Hub) handleSymbols(client ClientInterface, req protocol.WSRequest) {
	symbols := make([]string, 0, len(h.validTickers))
	for s := range h.validTickers {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	client.SendJSON(protocol.WSResponse{Type: protocol.TypeSymbols, ID: req.ID, Status: "success", Data: symbols})
}

func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.clientSubs[client]; ok {
		for sym := range subs {
			delete(h.subscribers[sym], client)
			h.decreaseRefCount(sym)
		}
		delete(h.clientSubs, client)
	}
	client.Close()
}

// Broadcast wraps a stored tick payload in a tick message and sends it to every subscriber.
func (h *Hub) Broadcast(symbol string, payload string) {
	msg, ok := h.tickMessage(payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscribers[symbol] {
		client.SendBytes(msg)
	}
}

func (h *Hub) tickMessage(payload string) ([]byte, bool) {
	var tick models.TickEvent
	if err := json.Unmarshal([]byte(payload), &tick); err != nil || tick.Symbol == "" {
		h.logger.Warn("Dropping malformed tick", zap.String("payload", payload), zap.Error(err))
		return nil, false
	}
	msg, err := json.Marshal(protocol.WSResponse{Type: protocol.TypeTick, Data: tick})
	if err != nil {
		h.logger.Error("JSON Marshal Error", zap.Error(err))
		return nil, false
	}
	return msg, true
}

func (h *Hub) decreaseRefCount(symbol string) {
	h.refCount[symbol]--
	if h.refCount[symbol] <= 0 {
		if err := h.store.UnsubscribeFromFeed(context.Background(), symbol); err != nil {
			h.logger.Error("Failed to unsubscribe upstream", zap.String("symbol", symbol), zap.Error(err))
		}
		delete(h.refCount, symbol)
		delete(h.subscribers, symbol)
	}
}

func (h *Hub) sendAck(c ClientInterface, id, msg string) {
	c.SendJSON(protocol.WSResponse{Type: protocol.TypeAck, ID: id, Status: "success", Message: msg})
}

func (h *Hub) sendError(c ClientInterface, id, msg string) {
	c.SendJSON(protocol.WSResponse{Type: protocol.TypeError, ID: id, Status: "error", Message: msg})
}
