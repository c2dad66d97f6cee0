// Package api exposes the engine over REST and a WebSocket feed. All
// writes go through the order service; the handlers only translate wire
// shapes and map domain errors onto status codes.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Ch3ngL0rd/orderbooks/domain/orderbook"
	"github.com/Ch3ngL0rd/orderbooks/domain/trade"
	"github.com/Ch3ngL0rd/orderbooks/service"
)

type Server struct {
	svc    *service.OrderService
	router *mux.Router
	hub    *Hub
	log    *zap.Logger
}

func NewServer(svc *service.OrderService, hub *Hub, log *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		hub:    hub,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handlePlaceOrder).Methods("POST")
	api.HandleFunc("/orders/take", s.handleTake).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancel).Methods("POST")
	api.HandleFunc("/orders/cancel-at-price", s.handleCancelAtPrice).Methods("POST")

	api.HandleFunc("/orderbook", s.handleGetOrderbook).Methods("GET")
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/trades/{id}", s.handleGetTradeLegs).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the full middleware-wrapped handler, also used by
// tests via httptest.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) Start(addr string) error {
	s.log.Info("api server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	side, qty, err := placeParams(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
		return
	}

	res, err := s.svc.PlaceLimit(side, req.User, req.Price, qty)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := PlaceOrderResponse{
		OrderID:    res.OrderID,
		Resting:    res.Resting,
		RestingQty: res.RestingQty,
		Trades:     tradeInfos(res.Trades),
	}
	respondJSON(w, resp)
}

func (s *Server) handleTake(w http.ResponseWriter, r *http.Request) {
	var req TakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	side, ok := parseSide(req.Side)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid side", req.Side)
		return
	}

	t, err := s.svc.MarketTake(side, req.User)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, tradeInfo(t))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	o, err := s.svc.Cancel(req.OrderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, orderInfo(o))
}

func (s *Server) handleCancelAtPrice(w http.ResponseWriter, r *http.Request) {
	var req CancelAtPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cancelled, err := s.svc.CancelAtPrice(req.User, req.Price)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	out := make([]OrderInfo, 0, len(cancelled))
	for _, o := range cancelled {
		out = append(out, orderInfo(o))
	}
	respondJSON(w, out)
}

func (s *Server) handleGetOrderbook(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.bookSnapshot())
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	var trades []trade.Trade
	if user := r.URL.Query().Get("user"); user != "" {
		trades = s.svc.TradesByUser(user)
	} else {
		trades = s.svc.Trades()
	}
	respondJSON(w, tradeInfos(trades))
}

func (s *Server) handleGetTradeLegs(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid trade id", err.Error())
		return
	}

	legs, ok := s.svc.TradeLegs(id)
	if !ok {
		respondError(w, http.StatusNotFound, "trade not found", "")
		return
	}
	out := make(map[string]LegInfo, len(legs))
	for k, l := range legs {
		out[k] = legInfo(l)
	}
	respondJSON(w, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// bookSnapshot builds the wire form of the current book, bids then asks,
// best price first.
func (s *Server) bookSnapshot() BookSnapshot {
	orders := s.svc.BookSnapshot()
	snap := BookSnapshot{
		Bids:      []OrderInfo{},
		Asks:      []OrderInfo{},
		Timestamp: time.Now().UnixMilli(),
	}
	for _, o := range orders {
		if o.Side == orderbook.Bid {
			snap.Bids = append(snap.Bids, orderInfo(o))
		} else {
			snap.Asks = append(snap.Asks, orderInfo(o))
		}
	}
	return snap
}

// placeParams resolves side and quantity for a place request. Without an
// explicit side the quantity's sign decides: positive buys, negative
// sells.
func placeParams(req PlaceOrderRequest) (orderbook.Side, int64, error) {
	if req.Side != "" {
		side, ok := parseSide(req.Side)
		if !ok {
			return 0, 0, fmt.Errorf("unknown side %q", req.Side)
		}
		return side, req.Qty, nil
	}
	switch {
	case req.Qty > 0:
		return orderbook.Bid, req.Qty, nil
	case req.Qty < 0:
		return orderbook.Ask, -req.Qty, nil
	default:
		return 0, 0, fmt.Errorf("quantity must be non-zero")
	}
}

func parseSide(s string) (orderbook.Side, bool) {
	switch s {
	case "bid", "buy":
		return orderbook.Bid, true
	case "ask", "sell":
		return orderbook.Ask, true
	default:
		return 0, false
	}
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderbook.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
	case errors.Is(err, orderbook.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found", err.Error())
	case errors.Is(err, orderbook.ErrNoLiquidity):
		respondError(w, http.StatusConflict, "no liquidity", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: detail})
}

func orderInfo(o orderbook.Order) OrderInfo {
	return OrderInfo{
		ID: o.ID, Side: o.Side.String(), User: o.User,
		Price: o.Price, Qty: o.Qty, Time: o.Time,
	}
}

func tradeInfo(t trade.Trade) TradeInfo {
	return TradeInfo{
		ID: t.ID, Price: t.Price, Qty: t.Qty,
		BuyOrder: t.BuyOrder, SellOrder: t.SellOrder,
		BuyUser: t.BuyUser, SellUser: t.SellUser,
		Taker: t.Taker.String(), Time: t.Time,
	}
}

func tradeInfos(trades []trade.Trade) []TradeInfo {
	out := make([]TradeInfo, 0, len(trades))
	for _, t := range trades {
		out = append(out, tradeInfo(t))
	}
	return out
}

func legInfo(l trade.Leg) LegInfo {
	return LegInfo{
		TradeID: l.TradeID, Side: l.Side, User: l.User, Order: l.Order,
		Price: l.Price, Qty: l.Qty, Time: l.Time, Instigator: l.Instigator,
	}
}
