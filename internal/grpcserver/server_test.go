package grpcserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "github.com/DimaJoyti/orderbook-aggregator/api/proto"
	"github.com/DimaJoyti/orderbook-aggregator/internal/broadcast"
	"github.com/DimaJoyti/orderbook-aggregator/internal/grpcserver"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// fakeBookSummaryStream is a minimal grpc.ServerStreamingServer[pb.Summary]
// stand-in that records every sent message instead of writing to a wire.
type fakeBookSummaryStream struct {
	sent []*pb.Summary
}

func (f *fakeBookSummaryStream) Send(s *pb.Summary) error {
	f.sent = append(f.sent, s)
	return nil
}
func (f *fakeBookSummaryStream) SetHeader(metadata.MD) error  { return nil }
func (f *fakeBookSummaryStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeBookSummaryStream) SetTrailer(metadata.MD)       {}
func (f *fakeBookSummaryStream) Context() context.Context     { return context.Background() }
func (f *fakeBookSummaryStream) SendMsg(m interface{}) error  { return nil }
func (f *fakeBookSummaryStream) RecvMsg(m interface{}) error  { return nil }

func fixtureSummary() model.Summary {
	bids := make([]model.Level, 10)
	asks := make([]model.Level, 10)
	for i := 0; i < 10; i++ {
		bids[i] = model.Level{Price: decimal.NewFromInt(int64(100 - i)), Amount: decimal.NewFromInt(1), Exchange: "Binance"}
		asks[i] = model.Level{Price: decimal.NewFromInt(int64(101 + i)), Amount: decimal.NewFromInt(1), Exchange: "Bitstamp"}
	}
	return model.NewSummary(bids, asks)
}

func TestBookSummary_StreamsUntilHubCloses(t *testing.T) {
	hub := broadcast.New(10)
	srv := grpcserver.New(hub, zap.NewNop())
	stream := &fakeBookSummaryStream{}

	done := make(chan error, 1)
	go func() { done <- srv.BookSummary(&pb.Empty{}, stream) }()
	// The hub only delivers items published after Subscribe, so give
	// BookSummary time to subscribe before publishing.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(broadcast.FromResult(model.Ok(fixtureSummary())))
	hub.Publish(broadcast.FromResult(model.Ok(fixtureSummary())))
	hub.Close()

	err := <-done
	require.NoError(t, err)
	assert.Len(t, stream.sent, 2)
	assert.Len(t, stream.sent[0].Bids, 10)
	assert.Len(t, stream.sent[0].Asks, 10)
}

func TestBookSummary_TranslatesErrorToInternalStatus(t *testing.T) {
	hub := broadcast.New(10)
	srv := grpcserver.New(hub, zap.NewNop())
	stream := &fakeBookSummaryStream{}

	done := make(chan error, 1)
	go func() { done <- srv.BookSummary(&pb.Empty{}, stream) }()
	time.Sleep(50 * time.Millisecond)

	hub.Publish(broadcast.FromResult(model.ErrResult[model.Summary](model.Transport("Binance", assertErr{}))))

	err := <-done
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
