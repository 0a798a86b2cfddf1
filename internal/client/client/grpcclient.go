package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const saltTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	tokens      TokenSource
	refreshes   singleflight.Group
}

var _ Client = (*GRPCClient)(nil)

// NewGRPCClient connects to endpointURL. tokens may be nil, in which case
// calls are sent without an access token. Extra dial options are appended
// after the defaults.
func NewGRPCClient(endpointURL string, tokens TokenSource, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client for %s: %w", endpointURL, err)
	}
	c.conn = conn
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.tokens == nil || method == MethodRefreshToken {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	current := c.tokens.Tokens()
	err := invoker(withAccessToken(ctx, current.Access), method, req, reply, cc, opts...)
	if !isTokenExpired(err) {
		return err
	}

	if current.Refresh == "" {
		_ = c.tokens.Expire(ctx)
		return err
	}

	fresh, rerr := c.refresh(ctx, current.Refresh)
	if rerr != nil {
		return rerr
	}

	// tokens refreshed, retry once with the new access token
	return invoker(withAccessToken(ctx, fresh.Access), method, req, reply, cc, opts...)
}

// refresh exchanges the refresh token. Concurrent callers holding the same
// refresh token share one round trip.
func (c *GRPCClient) refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	v, err, _ := c.refreshes.Do(refreshToken, func() (any, error) {
		resp := &structpb.Struct{}
		err := c.conn.Invoke(ctx, MethodRefreshToken, wrapperspb.String(refreshToken), resp)
		if err != nil {
			if code := status.Code(err); code == codes.Unauthenticated || code == codes.PermissionDenied {
				_ = c.tokens.Expire(ctx)
			}
			return Tokens{}, err
		}

		t, err := tokensFromStruct(resp)
		if err != nil {
			return Tokens{}, err
		}
		if t.Refresh == "" {
			t.Refresh = refreshToken
		}
		if err := c.tokens.Refreshed(ctx, t); err != nil {
			return Tokens{}, fmt.Errorf("store refreshed tokens: %w", err)
		}
		return t, nil
	})
	if err != nil {
		return Tokens{}, err
	}
	return v.(Tokens), nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp := &wrapperspb.StringValue{}
	if err := c.conn.Invoke(ctx, MethodPing, &emptypb.Empty{}, resp); err != nil {
		return c.mapError(err)
	}
	if resp.GetValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	req, err := structpb.NewStruct(map[string]any{
		fieldUsername: username,
		fieldSalt:     encodeBytes(salt),
		fieldVerifier: encodeBytes(verifier),
	})
	if err != nil {
		return err
	}
	if err := c.conn.Invoke(ctx, MethodRegister, req, &emptypb.Empty{}); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, saltTimeout)
	defer cancel()

	resp := &wrapperspb.BytesValue{}
	if err := c.conn.Invoke(ctx, MethodGetSalt, wrapperspb.String(username), resp); err != nil {
		return nil, c.mapError(err)
	}
	return resp.GetValue(), nil
}

func (c *GRPCClient) Login(ctx context.Context, username string, verifier []byte) (Tokens, error) {
	req, err := structpb.NewStruct(map[string]any{
		fieldUsername: username,
		fieldVerifier: encodeBytes(verifier),
	})
	if err != nil {
		return Tokens{}, err
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, MethodLogin, req, resp); err != nil {
		return Tokens{}, c.mapError(err)
	}
	return tokensFromStruct(resp)
}

func (c *GRPCClient) Logout(ctx context.Context, refreshToken string) error {
	if err := c.conn.Invoke(ctx, MethodLogout, wrapperspb.String(refreshToken), &emptypb.Empty{}); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) ListNotes(ctx context.Context) ([]models.NoteData, error) {
	resp := &structpb.ListValue{}
	if err := c.conn.Invoke(ctx, MethodListNotes, &emptypb.Empty{}, resp); err != nil {
		return nil, c.mapError(err)
	}
	return notesFromList(resp)
}

func (c *GRPCClient) CreateNote(ctx context.Context, note models.NoteData) (models.NoteData, error) {
	req, err := noteToStruct(note)
	if err != nil {
		return models.NoteData{}, err
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, MethodCreateNote, req, resp); err != nil {
		return models.NoteData{}, c.mapError(err)
	}
	return noteFromStruct(resp)
}

func (c *GRPCClient) DeleteNote(ctx context.Context, id string) error {
	if err := c.conn.Invoke(ctx, MethodDeleteNote, wrapperspb.String(id), &emptypb.Empty{}); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
