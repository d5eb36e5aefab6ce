package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/common"
	"github.com/sirupsen/logrus"
)

// Node is the part of a naivechain node exposed by the HTTP API.
type Node interface {
	GetChain() []chain.Record
	GetRecord(index int) (chain.Record, error)
	MineRecord(data string) (chain.Record, error)
	ListPeers() []string
	AddPeer(address string) error
	GetStats() map[string]string
}

// MineRequest is the body of a POST /mineBlock request.
type MineRequest struct {
	Data string `json:"data"`
}

// MineResponse is the body of a successful POST /mineBlock response.
type MineResponse struct {
	Msg   string       `json:"msg"`
	Block chain.Record `json:"block"`
}

// AddPeerRequest is the body of a POST /addPeer request.
type AddPeerRequest struct {
	Peer string `json:"peer"`
}

// MsgResponse is a response carrying only a message.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// Service serves the HTTP API of a node.
type Service struct {
	sync.Mutex

	bindAddress string
	node        Node
	logger      *logrus.Entry

	mux    *http.ServeMux
	server *http.Server
}

// NewService ...
func NewService(bindAddress string, n Node, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		logger:      logger,
		mux:         http.NewServeMux(),
	}

	service.registerHandlers()

	service.server = &http.Server{
		Addr:    bindAddress,
		Handler: service.mux,
	}

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering naivechain API handlers")
	s.mux.HandleFunc("/blocks", s.makeHandler(http.MethodGet, s.GetBlocks))
	s.mux.HandleFunc("/block/", s.makeHandler(http.MethodGet, s.GetBlock))
	s.mux.HandleFunc("/mineBlock", s.makeHandler(http.MethodPost, s.MineBlock))
	s.mux.HandleFunc("/peers", s.makeHandler(http.MethodGet, s.GetPeers))
	s.mux.HandleFunc("/addPeer", s.makeHandler(http.MethodPost, s.AddPeer))
	s.mux.HandleFunc("/stats", s.makeHandler(http.MethodGet, s.GetStats))
}

func (s *Service) makeHandler(method string, fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		fn(w, r)
	}
}

// Handler returns the http.Handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving naivechain API")

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}

// ServeListener serves the API on an existing listener. This is a blocking
// call.
func (s *Service) ServeListener(l net.Listener) {
	s.logger.WithField("bind_address", l.Addr().String()).Debug("Serving naivechain API")

	err := s.server.Serve(l)
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}

// Shutdown stops the HTTP server.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// GetBlocks returns the whole chain.
func (s *Service) GetBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.node.GetChain())
}

// GetBlock returns one record of the chain.
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Path[len("/block/"):]

	index, err := strconv.Atoi(param)

	if err != nil {
		s.logger.WithError(err).Debugf("Parsing block index parameter %s", param)

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	record, err := s.node.GetRecord(index)

	if err != nil {
		if common.IsStore(err, common.KeyNotFound) {
			s.logger.WithError(err).Debugf("Retrieving record %d", index)

			http.Error(w, err.Error(), http.StatusNotFound)

			return
		}

		s.logger.WithError(err).Errorf("Retrieving record %d", index)

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, record)
}

// MineBlock mines a record carrying the data of the request.
func (s *Service) MineBlock(w http.ResponseWriter, r *http.Request) {
	var req MineRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := s.node.MineRecord(req.Data)

	if err != nil {
		s.logger.WithError(err).Error("Mining record")

		http.Error(w, err.Error(), http.StatusServiceUnavailable)

		return
	}

	s.logger.WithField("block", record.String()).Info("Block added")

	writeJSON(w, http.StatusOK, MineResponse{Msg: "Block added", Block: record})
}

// GetPeers returns the addresses of the connected peers.
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.node.ListPeers())
}

// AddPeer dials the peer of the request in the background.
func (s *Service) AddPeer(w http.ResponseWriter, r *http.Request) {
	var req AddPeerRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Peer == "" {
		http.Error(w, "missing peer", http.StatusBadRequest)
		return
	}

	if err := s.node.AddPeer(req.Peer); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, MsgResponse{Msg: "Peer added"})
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.node.GetStats())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}
