package server

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wagiedev/uci-service-go/internal/api"
)

const (
	// wsReadLimit caps one inbound websocket message.
	wsReadLimit = 64 * 1024

	// wsQueueSize is how many requests a connection may have waiting.
	wsQueueSize = 8
)

// analyzeWS streams analyses over a websocket. Each text message is an
// api.AnalyzeRequest; each response echoes the request id. Requests on one
// connection are answered in order.
func (s *Server) analyzeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Debug("Failed to accept websocket", "error", err)

		return
	}

	conn.SetReadLimit(wsReadLimit)

	log := s.log.With("session_id", ulid.Make().String())
	log.Debug("Websocket session opened")

	requests := make(chan api.AnalyzeRequest, wsQueueSize)

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		defer close(requests)

		for {
			var req api.AnalyzeRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				return err
			}

			select {
			case requests <- req:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		for req := range requests {
			resp := api.AnalyzeResponse{ID: req.ID}

			if req.FEN == "" {
				resp.Error = "Missing FEN parameter"
			} else {
				result := s.engine.Analyze(ctx, req.Request())
				resp.BestMoveResponse = api.NewBestMoveResponse(req.FEN, result)
			}

			if err := wsjson.Write(ctx, conn, resp); err != nil {
				return err
			}
		}

		return nil
	})

	err = g.Wait()

	switch {
	case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
		log.Debug("Websocket session closed by client")
		_ = conn.Close(websocket.StatusNormalClosure, "")
	case stderrors.Is(err, context.Canceled):
		log.Debug("Websocket session canceled")
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	default:
		log.Warn("Websocket session failed", "error", err)
		_ = conn.Close(websocket.StatusInternalError, "internal error")
	}
}
