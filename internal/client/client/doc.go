// Package client is the transport layer between the gophnotes client and
// its backend.
//
// # Overview
//
//  1. Client describes the remote calls the rest of the application needs:
//     account registration and login, token refresh and revocation, a
//     liveness probe, and list/create/delete over the single note
//     collection owned by the signed-in principal.
//  2. GRPCClient implements Client over a gRPC connection. Messages are the
//     protobuf well-known types (structpb, wrapperspb, emptypb); see wire.go
//     for the record layout. An interceptor attaches the access token to
//     every call, refreshes it once when the server reports it expired and
//     reports a rejected refresh to the TokenSource.
//  3. InitDatabase opens the local SQLite database used as the session
//     cache and applies the embedded goose migrations.
//
// # Error Handling
//
// gRPC status codes are mapped onto sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Malformed server
// payloads yield ErrMalformedResponse.
//
// All operations honor context cancellation and deadlines.
package client
