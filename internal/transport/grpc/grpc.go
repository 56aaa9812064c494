// Package grpc implements the gRPC transport for dictado.
//
// The service exposes one unary method, dictado.v1.Dictado/Process, that
// takes a message.Message and answers a message.Response. Payloads use a
// JSON codec, so any gRPC client that forces the "json" content-subtype can
// call it without generated stubs.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/nadzzz/dictado/internal/message"
	"github.com/nadzzz/dictado/internal/ratelimit"
	"github.com/nadzzz/dictado/internal/transport"
)

// Fully qualified names of the service.
const (
	ServiceName   = "dictado.v1.Dictado"
	ProcessMethod = "/" + ServiceName + "/Process"
)

// DictadoServer is the server API of the Dictado service.
type DictadoServer interface {
	Process(ctx context.Context, msg *message.Message) (*message.Response, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DictadoServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: processHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dictado/v1/dictado.proto",
}

func processHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DictadoServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProcessMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DictadoServer).Process(ctx, req.(*message.Message))
	}
	return interceptor(ctx, in, info, handler)
}

// service adapts a transport.Handler to DictadoServer.
type service struct {
	handler transport.Handler
}

func (s *service) Process(ctx context.Context, msg *message.Message) (*message.Response, error) {
	if msg.Source == "" {
		msg.Source = peerKey(ctx)
	}
	return s.handler(ctx, msg)
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port    int
	limiter *ratelimit.Limiter
	server  *grpc.Server
}

// New creates a new gRPC transport on the given port. A nil limiter disables
// rate limiting.
func New(port int, limiter *ratelimit.Limiter) *Transport {
	return &Transport{port: port, limiter: limiter}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, handler)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler transport.Handler) error {
	t.server = grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(loggingInterceptor, rateLimitInterceptor(t.limiter)),
	)
	t.server.RegisterService(&serviceDesc, &service{handler: handler})

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}
