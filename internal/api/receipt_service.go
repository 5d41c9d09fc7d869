// Package api defines the ReceiptService RPC surface: messages, procedure names and
// Connect handler/client constructors.
package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService service.
const ReceiptServiceName = "receiptsplit.v1.ReceiptService"

const (
	ReceiptServiceCreateSessionProcedure   = "/receiptsplit.v1.ReceiptService/CreateSession"
	ReceiptServiceGetSessionProcedure      = "/receiptsplit.v1.ReceiptService/GetSession"
	ReceiptServiceDispatchProcedure        = "/receiptsplit.v1.ReceiptService/Dispatch"
	ReceiptServiceCalculateSplitsProcedure = "/receiptsplit.v1.ReceiptService/CalculateSplits"
	ReceiptServiceDistributeProcedure      = "/receiptsplit.v1.ReceiptService/Distribute"
	ReceiptServiceRoundToMatchProcedure    = "/receiptsplit.v1.ReceiptService/RoundToMatch"
)

// SessionProcedures need a session token.
var SessionProcedures = map[string]bool{
	ReceiptServiceGetSessionProcedure: true,
	ReceiptServiceDispatchProcedure:   true,
}

// ReceiptServiceHandler is implemented by the server.
type ReceiptServiceHandler interface {
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error)
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error)
	Dispatch(context.Context, *connect.Request[DispatchRequest]) (*connect.Response[DispatchResponse], error)
	CalculateSplits(context.Context, *connect.Request[CalculateSplitsRequest]) (*connect.Response[CalculateSplitsResponse], error)
	Distribute(context.Context, *connect.Request[DistributeRequest]) (*connect.Response[DistributeResponse], error)
	RoundToMatch(context.Context, *connect.Request[RoundToMatchRequest]) (*connect.Response[RoundToMatchResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	createSession := connect.NewUnaryHandler(ReceiptServiceCreateSessionProcedure, svc.CreateSession, opts...)
	getSession := connect.NewUnaryHandler(ReceiptServiceGetSessionProcedure, svc.GetSession, opts...)
	dispatch := connect.NewUnaryHandler(ReceiptServiceDispatchProcedure, svc.Dispatch, opts...)
	calculateSplits := connect.NewUnaryHandler(ReceiptServiceCalculateSplitsProcedure, svc.CalculateSplits, opts...)
	distribute := connect.NewUnaryHandler(ReceiptServiceDistributeProcedure, svc.Distribute, opts...)
	roundToMatch := connect.NewUnaryHandler(ReceiptServiceRoundToMatchProcedure, svc.RoundToMatch, opts...)

	return "/" + ReceiptServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ReceiptServiceCreateSessionProcedure:
			createSession.ServeHTTP(w, r)
		case ReceiptServiceGetSessionProcedure:
			getSession.ServeHTTP(w, r)
		case ReceiptServiceDispatchProcedure:
			dispatch.ServeHTTP(w, r)
		case ReceiptServiceCalculateSplitsProcedure:
			calculateSplits.ServeHTTP(w, r)
		case ReceiptServiceDistributeProcedure:
			distribute.ServeHTTP(w, r)
		case ReceiptServiceRoundToMatchProcedure:
			roundToMatch.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ReceiptServiceClient calls a ReceiptService over Connect.
type ReceiptServiceClient struct {
	createSession   *connect.Client[CreateSessionRequest, CreateSessionResponse]
	getSession      *connect.Client[GetSessionRequest, GetSessionResponse]
	dispatch        *connect.Client[DispatchRequest, DispatchResponse]
	calculateSplits *connect.Client[CalculateSplitsRequest, CalculateSplitsResponse]
	distribute      *connect.Client[DistributeRequest, DistributeResponse]
	roundToMatch    *connect.Client[RoundToMatchRequest, RoundToMatchResponse]
}

// NewReceiptServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &ReceiptServiceClient{
		createSession:   connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+ReceiptServiceCreateSessionProcedure, opts...),
		getSession:      connect.NewClient[GetSessionRequest, GetSessionResponse](httpClient, baseURL+ReceiptServiceGetSessionProcedure, opts...),
		dispatch:        connect.NewClient[DispatchRequest, DispatchResponse](httpClient, baseURL+ReceiptServiceDispatchProcedure, opts...),
		calculateSplits: connect.NewClient[CalculateSplitsRequest, CalculateSplitsResponse](httpClient, baseURL+ReceiptServiceCalculateSplitsProcedure, opts...),
		distribute:      connect.NewClient[DistributeRequest, DistributeResponse](httpClient, baseURL+ReceiptServiceDistributeProcedure, opts...),
		roundToMatch:    connect.NewClient[RoundToMatchRequest, RoundToMatchResponse](httpClient, baseURL+ReceiptServiceRoundToMatchProcedure, opts...),
	}
}

func (c *ReceiptServiceClient) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) Dispatch(ctx context.Context, req *connect.Request[DispatchRequest]) (*connect.Response[DispatchResponse], error) {
	return c.dispatch.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) CalculateSplits(ctx context.Context, req *connect.Request[CalculateSplitsRequest]) (*connect.Response[CalculateSplitsResponse], error) {
	return c.calculateSplits.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) Distribute(ctx context.Context, req *connect.Request[DistributeRequest]) (*connect.Response[DistributeResponse], error) {
	return c.distribute.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) RoundToMatch(ctx context.Context, req *connect.Request[RoundToMatchRequest]) (*connect.Response[RoundToMatchResponse], error) {
	return c.roundToMatch.CallUnary(ctx, req)
}
