package client

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*************
 * In-process fake backend served over bufconn
 *************/

type fakeServer struct {
	mu sync.Mutex

	accessToken  string
	refreshToken string
	expiredToken string

	salt     []byte
	register *structpb.Struct
	login    *structpb.Struct

	notes map[string]*structpb.Struct
	order []string

	seenTokens   []string
	refreshCalls int
	logouts      []string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		accessToken:  "A1",
		refreshToken: "R1",
		expiredToken: "EXPIRED",
		salt:         []byte("pepper"),
		notes:        map[string]*structpb.Struct{},
	}
}

type fakeMethod func(s *fakeServer, ctx context.Context, req proto.Message) (proto.Message, error)

func fakeHandler(newReq func() proto.Message, fn fakeMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
		req := newReq()
		if err := dec(req); err != nil {
			return nil, err
		}
		return fn(srv.(*fakeServer), ctx, req)
	}
}

func empty() proto.Message       { return &emptypb.Empty{} }
func stringValue() proto.Message { return &wrapperspb.StringValue{} }
func structValue() proto.Message { return &structpb.Struct{} }

func (s *fakeServer) serviceDesc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Ping", Handler: fakeHandler(empty, (*fakeServer).ping)},
			{MethodName: "Register", Handler: fakeHandler(structValue, (*fakeServer).doRegister)},
			{MethodName: "GetSalt", Handler: fakeHandler(stringValue, (*fakeServer).getSalt)},
			{MethodName: "Login", Handler: fakeHandler(structValue, (*fakeServer).doLogin)},
			{MethodName: "RefreshToken", Handler: fakeHandler(stringValue, (*fakeServer).refreshTokens)},
			{MethodName: "Logout", Handler: fakeHandler(stringValue, (*fakeServer).logout)},
			{MethodName: "ListNotes", Handler: fakeHandler(empty, (*fakeServer).listNotes)},
			{MethodName: "CreateNote", Handler: fakeHandler(structValue, (*fakeServer).createNote)},
			{MethodName: "DeleteNote", Handler: fakeHandler(stringValue, (*fakeServer).deleteNote)},
		},
	}
}

func (s *fakeServer) authorize(ctx context.Context) error {
	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			token = v[0]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seenTokens = append(s.seenTokens, token)

	switch token {
	case s.accessToken:
		return nil
	case s.expiredToken:
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	default:
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}
}

func (s *fakeServer) ping(ctx context.Context, _ proto.Message) (proto.Message, error) {
	return wrapperspb.String("OK"), nil
}

func (s *fakeServer) doRegister(ctx context.Context, req proto.Message) (proto.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register = req.(*structpb.Struct)
	return &emptypb.Empty{}, nil
}

func (s *fakeServer) getSalt(ctx context.Context, req proto.Message) (proto.Message, error) {
	if req.(*wrapperspb.StringValue).GetValue() != "alice" {
		return nil, status.Error(codes.NotFound, "no such user")
	}
	return wrapperspb.Bytes(s.salt), nil
}

func (s *fakeServer) doLogin(ctx context.Context, req proto.Message) (proto.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.login = req.(*structpb.Struct)
	return structpb.NewStruct(map[string]any{
		fieldAccessToken:  s.accessToken,
		fieldRefreshToken: s.refreshToken,
	})
}

func (s *fakeServer) refreshTokens(ctx context.Context, req proto.Message) (proto.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	if req.(*wrapperspb.StringValue).GetValue() != s.refreshToken {
		return nil, status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	}
	s.accessToken = "A2"
	s.refreshToken = "R2"
	return structpb.NewStruct(map[string]any{
		fieldAccessToken:  s.accessToken,
		fieldRefreshToken: s.refreshToken,
	})
}

func (s *fakeServer) logout(ctx context.Context, req proto.Message) (proto.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts = append(s.logouts, req.(*wrapperspb.StringValue).GetValue())
	return &emptypb.Empty{}, nil
}

func (s *fakeServer) listNotes(ctx context.Context, _ proto.Message) (proto.Message, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := &structpb.ListValue{}
	for _, id := range s.order {
		list.Values = append(list.Values, structpb.NewStructValue(s.notes[id]))
	}
	return list, nil
}

func (s *fakeServer) createNote(ctx context.Context, req proto.Message) (proto.Message, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	rec := req.(*structpb.Struct)
	id := rec.GetFields()[fieldID].GetStringValue()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[id] = rec
	s.order = append(s.order, id)
	return rec, nil
}

func (s *fakeServer) deleteNote(ctx context.Context, req proto.Message) (proto.Message, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}
	id := req.(*wrapperspb.StringValue).GetValue()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return nil, status.Error(codes.NotFound, "note "+id)
	}
	delete(s.notes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return &emptypb.Empty{}, nil
}

func startFakeServer(t *testing.T, s *fakeServer, tokens TokenSource) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(s.serviceDesc(), s)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", tokens,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

/*************
 * In-memory TokenSource
 *************/

type memTokens struct {
	mu        sync.Mutex
	tokens    Tokens
	refreshed []Tokens
	expired   int
}

func (m *memTokens) Tokens() Tokens {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens
}

func (m *memTokens) Refreshed(ctx context.Context, t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	m.refreshed = append(m.refreshed, t)
	return nil
}

func (m *memTokens) Expire(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	m.expired++
	return nil
}

func (m *memTokens) expiredCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}
