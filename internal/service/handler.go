package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NewAllocationServiceHandler builds an HTTP handler serving every
// AllocationService procedure. It returns the path to mount it on.
func NewAllocationServiceHandler(svc *AllocationService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AllocationServicePreviewAllocationProcedure,
		connect.NewUnaryHandler(AllocationServicePreviewAllocationProcedure, svc.PreviewAllocation, opts...))
	mux.Handle(AllocationServiceDistributeProfitProcedure,
		connect.NewUnaryHandler(AllocationServiceDistributeProfitProcedure, svc.DistributeProfit, opts...))
	mux.Handle(AllocationServicePublishGrabProcedure,
		connect.NewUnaryHandler(AllocationServicePublishGrabProcedure, svc.PublishGrab, opts...))
	mux.Handle(AllocationServiceClaimGrabProcedure,
		connect.NewUnaryHandler(AllocationServiceClaimGrabProcedure, svc.ClaimGrab, opts...))
	mux.Handle(AllocationServiceCloseGrabProcedure,
		connect.NewUnaryHandler(AllocationServiceCloseGrabProcedure, svc.CloseGrab, opts...))
	mux.Handle(AllocationServiceGetGrabBoardProcedure,
		connect.NewUnaryHandler(AllocationServiceGetGrabBoardProcedure, svc.GetGrabBoard, opts...))
	mux.Handle(AllocationServiceListGrabBoardsProcedure,
		connect.NewUnaryHandler(AllocationServiceListGrabBoardsProcedure, svc.ListGrabBoards, opts...))

	return "/" + AllocationServiceName + "/", mux
}

// AllocationServiceClient calls AllocationService over Connect with the JSON codec.
type AllocationServiceClient struct {
	previewAllocation *connect.Client[PreviewAllocationRequest, PreviewAllocationResponse]
	distributeProfit  *connect.Client[DistributeProfitRequest, DistributeProfitResponse]
	publishGrab       *connect.Client[PublishGrabRequest, PublishGrabResponse]
	claimGrab         *connect.Client[ClaimGrabRequest, ClaimGrabResponse]
	closeGrab         *connect.Client[wrapperspb.StringValue, PublishGrabResponse]
	getGrabBoard      *connect.Client[wrapperspb.StringValue, GetGrabBoardResponse]
	listGrabBoards    *connect.Client[wrapperspb.StringValue, ListGrabBoardsResponse]
}

// NewAllocationServiceClient constructs a client for the service at baseURL.
func NewAllocationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AllocationServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &AllocationServiceClient{
		previewAllocation: connect.NewClient[PreviewAllocationRequest, PreviewAllocationResponse](
			httpClient, baseURL+AllocationServicePreviewAllocationProcedure, opts...),
		distributeProfit: connect.NewClient[DistributeProfitRequest, DistributeProfitResponse](
			httpClient, baseURL+AllocationServiceDistributeProfitProcedure, opts...),
		publishGrab: connect.NewClient[PublishGrabRequest, PublishGrabResponse](
			httpClient, baseURL+AllocationServicePublishGrabProcedure, opts...),
		claimGrab: connect.NewClient[ClaimGrabRequest, ClaimGrabResponse](
			httpClient, baseURL+AllocationServiceClaimGrabProcedure, opts...),
		closeGrab: connect.NewClient[wrapperspb.StringValue, PublishGrabResponse](
			httpClient, baseURL+AllocationServiceCloseGrabProcedure, opts...),
		getGrabBoard: connect.NewClient[wrapperspb.StringValue, GetGrabBoardResponse](
			httpClient, baseURL+AllocationServiceGetGrabBoardProcedure, opts...),
		listGrabBoards: connect.NewClient[wrapperspb.StringValue, ListGrabBoardsResponse](
			httpClient, baseURL+AllocationServiceListGrabBoardsProcedure, opts...),
	}
}

func (c *AllocationServiceClient) PreviewAllocation(ctx context.Context, req *connect.Request[PreviewAllocationRequest]) (*connect.Response[PreviewAllocationResponse], error) {
	return c.previewAllocation.CallUnary(ctx, req)
}

func (c *AllocationServiceClient) DistributeProfit(ctx context.Context, req *connect.Request[DistributeProfitRequest]) (*connect.Response[DistributeProfitResponse], error) {
	return c.distributeProfit.CallUnary(ctx, req)
}

func (c *AllocationServiceClient) PublishGrab(ctx context.Context, req *connect.Request[PublishGrabRequest]) (*connect.Response[PublishGrabResponse], error) {
	return c.publishGrab.CallUnary(ctx, req)
}

func (c *AllocationServiceClient) ClaimGrab(ctx context.Context, req *connect.Request[ClaimGrabRequest]) (*connect.Response[ClaimGrabResponse], error) {
	return c.claimGrab.CallUnary(ctx, req)
}

func (c *AllocationServiceClient) CloseGrab(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[PublishGrabResponse], error) {
	return c.closeGrab.CallUnary(ctx, req)
}

func (c *AllocationServiceClient) GetGrabBoard(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[GetGrabBoardResponse], error) {
	return c.getGrabBoard.CallUnary(ctx, req)
}

func (c *AllocationServiceClient) ListGrabBoards(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[ListGrabBoardsResponse], error) {
	return c.listGrabBoards.CallUnary(ctx, req)
}
