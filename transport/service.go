package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "metacreation.v1.Runtime"

const (
	methodSend     = "/" + ServiceName + "/Send"
	methodRegister = "/" + ServiceName + "/Register"
	methodTypes    = "/" + ServiceName + "/Types"
)

// RuntimeServer is the server side of the service.
type RuntimeServer interface {
	Send(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Types(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterRuntimeServer attaches srv to s.
func RegisterRuntimeServer(s grpc.ServiceRegistrar, srv RuntimeServer) {
	s.RegisterService(&runtimeServiceDesc, srv)
}

var runtimeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RuntimeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Send", Handler: unaryHandler(methodSend, RuntimeServer.Send)},
		{MethodName: "Register", Handler: unaryHandler(methodRegister, RuntimeServer.Register)},
		{MethodName: "Types", Handler: unaryHandler(methodTypes, RuntimeServer.Types)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "metacreation/v1/runtime.proto",
}

type unaryMethod func(RuntimeServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RuntimeServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RuntimeServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// Message content is an opaque string while structpb strings must be UTF-8;
// other content travels base64 encoded and is marked by contentEncoding.
const (
	fieldContent    = "content"
	contentEncoding = "content_encoding"
	encodingBase64  = "base64"
)

func putContent(fields map[string]any, content string) {
	if utf8.ValidString(content) {
		fields[fieldContent] = content
		return
	}
	fields[fieldContent] = base64.StdEncoding.EncodeToString([]byte(content))
	fields[contentEncoding] = encodingBase64
}

func getContent(s *structpb.Struct) (string, error) {
	raw := stringField(s, fieldContent)
	switch enc := stringField(s, contentEncoding); enc {
	case "":
		return raw, nil
	case encodingBase64:
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return "", fmt.Errorf("decode content: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported content encoding %q", enc)
	}
}
