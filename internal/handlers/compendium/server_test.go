package compendium_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	"github.com/KirkDiggler/rpg-compendium/internal/handlers/compendium"
	"github.com/KirkDiggler/rpg-compendium/internal/testutils"
)

type panicServer struct {
	compendium.Server
}

func (panicServer) GetEntity(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	panic("boom")
}

type ServerTestSuite struct {
	suite.Suite
	ctx    context.Context
	logs   *observer.ObservedLogs
	srv    *grpc.Server
	conn   *grpc.ClientConn
	client *compendium.Client
}

func (s *ServerTestSuite) start(handler compendium.Server) {
	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.srv, _ = compendium.NewGRPCServer(handler, zap.New(core))

	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = s.srv.Serve(lis)
	}()

	var err error
	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.client = compendium.NewClient(s.conn)
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()
	store := testutils.NewTestStore(s.T())
	testutils.SeedCompendium(s.T(), store)
	handler, err := compendium.NewHandler(&compendium.HandlerConfig{Store: store})
	s.Require().NoError(err)
	s.start(handler)
}

func (s *ServerTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.srv.Stop()
}

func (s *ServerTestSuite) TestGetEntity() {
	resp, err := s.client.GetEntity(s.ctx, "class", testutils.ClassFighter)
	s.Require().NoError(err)
	s.Equal("Fighter", resp.GetFields()["entity"].GetStructValue().GetFields()["name"].GetStringValue())
	s.GreaterOrEqual(s.logs.FilterMessage("finished call").Len(), 1)
}

func (s *ServerTestSuite) TestErrorsKeepTheirCode() {
	_, err := s.client.GetEntity(s.ctx, "spell", "wish")
	s.True(errors.IsNotFound(err), "%v", err)

	_, err = s.client.ListEntities(s.ctx, compendium.ListRequest{Type: "planet"})
	s.True(errors.IsInvalidArgument(err), "%v", err)
}

func (s *ServerTestSuite) TestListEntities() {
	resp, err := s.client.ListEntities(s.ctx, compendium.ListRequest{Type: "background", Limit: 2})
	s.Require().NoError(err)
	s.Equal(float64(3), resp.GetFields()["total"].GetNumberValue())
	s.Len(resp.GetFields()["entities"].GetListValue().GetValues(), 2)
}

func (s *ServerTestSuite) TestListClassSpells() {
	level := 0
	resp, err := s.client.ListClassSpells(s.ctx, testutils.ClassCleric, &level)
	s.Require().NoError(err)
	s.Len(resp.GetFields()["spells"].GetListValue().GetValues(), 4)
}

func (s *ServerTestSuite) TestHealth() {
	health := grpc_health_v1.NewHealthClient(s.conn)
	resp, err := health.Check(s.ctx, &grpc_health_v1.HealthCheckRequest{Service: compendium.ServiceName})
	s.Require().NoError(err)
	s.Equal(grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}

func (s *ServerTestSuite) TestPanicRecovered() {
	_ = s.conn.Close()
	s.srv.Stop()
	s.start(panicServer{})

	_, err := s.client.GetEntity(s.ctx, "class", testutils.ClassFighter)
	s.Equal(errors.CodeInternal, errors.GetCode(err))
	s.Equal(1, s.logs.FilterMessage("recovered from panic").Len())
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
