package service

import "github.com/mmynk/bordertrade/internal/models"

const (
	// AllocationServiceName is the fully-qualified name of the allocation service.
	AllocationServiceName = "bordertrade.v1.AllocationService"

	AllocationServicePreviewAllocationProcedure = "/bordertrade.v1.AllocationService/PreviewAllocation"
	AllocationServiceDistributeProfitProcedure  = "/bordertrade.v1.AllocationService/DistributeProfit"
	AllocationServicePublishGrabProcedure       = "/bordertrade.v1.AllocationService/PublishGrab"
	AllocationServiceClaimGrabProcedure         = "/bordertrade.v1.AllocationService/ClaimGrab"
	AllocationServiceCloseGrabProcedure         = "/bordertrade.v1.AllocationService/CloseGrab"
	AllocationServiceGetGrabBoardProcedure      = "/bordertrade.v1.AllocationService/GetGrabBoard"
	AllocationServiceListGrabBoardsProcedure    = "/bordertrade.v1.AllocationService/ListGrabBoards"
)

// DefaultRoles may call every procedure.
var DefaultRoles = []models.Role{models.RoleAgent, models.RoleEnterprise}

// RoleOverrides widens access for procedures residents use themselves.
var RoleOverrides = map[string][]models.Role{
	AllocationServiceClaimGrabProcedure: {models.RoleAgent, models.RoleEnterprise, models.RoleResident},
}
