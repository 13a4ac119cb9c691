package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	pb "github.com/DimaJoyti/orderbook-aggregator/api/proto"
	"github.com/DimaJoyti/orderbook-aggregator/internal/aggregator"
	"github.com/DimaJoyti/orderbook-aggregator/internal/broadcast"
	"github.com/DimaJoyti/orderbook-aggregator/internal/config"
	"github.com/DimaJoyti/orderbook-aggregator/internal/currency"
	"github.com/DimaJoyti/orderbook-aggregator/internal/exchange"
	"github.com/DimaJoyti/orderbook-aggregator/internal/grpcserver"
	loggerpkg "github.com/DimaJoyti/orderbook-aggregator/internal/logger"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

const serviceName = "orderbook-aggregator"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the single-job CLI: a currency pair and a port,
// defaulting to ETHBTC and 50051 the way the upstream reference's CLI does.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orderbook-aggregator [currency_pair] [port]",
		Short: "gRPC server that streams a merged order book for a currency pair",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runServer,
		// main prints the returned error itself as a single line.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	pairArg := "ETHBTC"
	if len(args) > 0 {
		pairArg = args[0]
	}
	port := 50051
	if len(args) > 1 {
		parsed, err := parsePort(args[1])
		if err != nil {
			return err
		}
		port = parsed
	}

	// The closed-set check happens here, ahead of currency.Parse, so a
	// well-formed-but-unsupported pair is rejected with the same message
	// a CLI flag validator would give, before any network connection is
	// attempted.
	if !currency.Supported(pairArg) {
		return fmt.Errorf("currency pair %q is not one of the supported pairs", pairArg)
	}
	pair, err := currency.Parse(pairArg)
	if err != nil {
		return err
	}

	cfg, err := config.Load(pair.String(), port, nil)
	if err != nil {
		return err
	}

	log := loggerpkg.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting orderbook aggregator",
		zap.String("currency_pair", cfg.CurrencyPair),
		zap.Int("port", cfg.Port),
	)

	binance := exchange.NewBinanceAdapter(nil)
	bitstamp := exchange.NewBitstampAdapter(nil)

	binanceUpdates, err := binance.Stream(pair)
	if err != nil {
		return fmt.Errorf("connecting to binance: %w", err)
	}
	bitstampUpdates, err := bitstamp.Stream(pair)
	if err != nil {
		return fmt.Errorf("connecting to bitstamp: %w", err)
	}

	merger := aggregator.NewMerger()
	merged := merger.Run(
		aggregator.Source{Exchange: exchange.ExchangeNameBinance, Updates: binanceUpdates},
		aggregator.Source{Exchange: exchange.ExchangeNameBitstamp, Updates: bitstampUpdates},
	)

	hub := broadcast.New(cfg.HubCapacity)
	go pump(hub, merged, log)

	lis, err := net.Listen("tcp", fmt.Sprintf("[::1]:%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(loggingUnaryInterceptor(log)),
		grpc.StreamInterceptor(loggingStreamInterceptor(log)),
	)
	pb.RegisterOrderbookAggregatorServer(server, grpcserver.New(hub, log))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.Int("port", cfg.Port))
		serveErr <- server.Serve(lis)
	}()

	ctx := cmd.Context()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down orderbook aggregator")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("server stopped gracefully")
	case <-shutdownCtx.Done():
		log.Warn("shutdown timed out, forcing stop")
		server.Stop()
	}
	return nil
}

// pump forwards every merged item onto the broadcast hub until merged
// closes, which happens only if both exchange adapters terminate. Each
// item is converted to the hub's string-typed Item before publication, so
// no live error value crosses the broadcast boundary.
func pump(hub *broadcast.Hub, merged <-chan model.Result[model.Summary], log *zap.Logger) {
	for item := range merged {
		hub.Publish(broadcast.FromResult(item))
	}
	log.Warn("both exchange streams terminated; closing broadcast hub")
	hub.Close()
}

func parsePort(text string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(text, "%d", &port); err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", text, err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

func loggingUnaryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCompletion(log, info.FullMethod, start, err)
		return resp, err
	}
}

func loggingStreamInterceptor(log *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, stream)
		logCompletion(log, info.FullMethod, start, err)
		return err
	}
}

func logCompletion(log *zap.Logger, method string, start time.Time, err error) {
	fields := []zap.Field{zap.String("method", method), zap.Duration("duration", time.Since(start))}
	if err != nil {
		log.Error("rpc failed", append(fields, zap.Error(err))...)
		return
	}
	log.Info("rpc completed", fields...)
}
