// Package grpcserver implements the OrderbookAggregator gRPC service,
// translating the broadcast hub's stream into BookSummary responses.
package grpcserver

import (
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/DimaJoyti/orderbook-aggregator/api/proto"
	"github.com/DimaJoyti/orderbook-aggregator/internal/broadcast"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// Server implements pb.OrderbookAggregatorServer over a broadcast.Hub.
type Server struct {
	pb.UnimplementedOrderbookAggregatorServer

	hub *broadcast.Hub
	log *zap.Logger
}

// New builds a Server that streams from hub.
func New(hub *broadcast.Hub, log *zap.Logger) *Server {
	return &Server{hub: hub, log: log}
}

// BookSummary subscribes to the hub and streams merged summaries to the
// client until the hub closes or the client disconnects. A lagged item is
// skipped silently — the client simply receives the next summary in
// sequence. An Err item is surfaced as a gRPC internal error and ends the
// stream, matching the upstream adapter's own terminate-on-unrecoverable-
// error behavior.
func (s *Server) BookSummary(_ *pb.Empty, stream pb.OrderbookAggregator_BookSummaryServer) error {
	sub := s.hub.Subscribe()

	for {
		item, lagged, ok := sub.Next()
		if !ok {
			return nil
		}
		if lagged {
			continue
		}
		if item.Err != "" {
			s.log.Warn("book summary stream terminated by upstream error", zap.String("error", item.Err))
			return status.Error(codes.Internal, item.Err)
		}

		if err := stream.Send(toProto(item.Value)); err != nil {
			return err
		}
	}
}

func toProto(s model.Summary) *pb.Summary {
	bids := make([]*pb.Level, len(s.Bids))
	for i, l := range s.Bids {
		bids[i] = toProtoLevel(l)
	}
	asks := make([]*pb.Level, len(s.Asks))
	for i, l := range s.Asks {
		asks[i] = toProtoLevel(l)
	}
	spread, _ := s.Spread.Float64()
	return &pb.Summary{Bids: bids, Asks: asks, Spread: spread}
}

func toProtoLevel(l model.Level) *pb.Level {
	price, _ := l.Price.Float64()
	amount, _ := l.Amount.Float64()
	return &pb.Level{Price: price, Amount: amount, Exchange: l.Exchange}
}
