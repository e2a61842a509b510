// Package compendium serves the compendium over gRPC. Requests and responses
// are google.protobuf.Struct messages so the service needs no generated code.
package compendium

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "compendium.v1.CompendiumService"

const (
	methodGetEntity       = "GetEntity"
	methodListEntities    = "ListEntities"
	methodListClassSpells = "ListClassSpells"
)

// Server is the server side of CompendiumService
type Server interface {
	// GetEntity takes {type, slug} and returns {entity}
	GetEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	// ListEntities takes {type, name_contains, limit, offset} and returns
	// {entities, total}
	ListEntities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	// ListClassSpells takes {class, max_level} and returns {class, spells}
	ListClassSpells(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(method string, call func(Server, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(Server), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes CompendiumService for grpc.ServiceRegistrar
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(methodGetEntity, Server.GetEntity),
		unary(methodListEntities, Server.ListEntities),
		unary(methodListClassSpells, Server.ListClassSpells),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "compendium/v1/compendium.proto",
}

// RegisterServer registers srv on s
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// ListRequest holds the ListEntities filters
type ListRequest struct {
	Type         string
	NameContains string
	Limit        int
	Offset       int
}

// Client calls CompendiumService. Errors come back as internal errors with
// the status code preserved.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a client connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return out, nil
}

// GetEntity fetches one entity by type and slug
func (c *Client) GetEntity(ctx context.Context, entityType, slug string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetEntity, map[string]any{"type": entityType, "slug": slug}, opts...)
}

// ListEntities lists entities of a type
func (c *Client) ListEntities(ctx context.Context, req ListRequest, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fields := map[string]any{"type": req.Type}
	if req.NameContains != "" {
		fields["name_contains"] = req.NameContains
	}
	if req.Limit > 0 {
		fields["limit"] = req.Limit
	}
	if req.Offset > 0 {
		fields["offset"] = req.Offset
	}
	return c.invoke(ctx, methodListEntities, fields, opts...)
}

// ListClassSpells lists the spells of a class, optionally capped by level
func (c *Client) ListClassSpells(ctx context.Context, class string, maxLevel *int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fields := map[string]any{"class": class}
	if maxLevel != nil {
		fields["max_level"] = *maxLevel
	}
	return c.invoke(ctx, methodListClassSpells, fields, opts...)
}
