package constants

// Organization permissions
const (
	PermSuperAdminFull = "pickup-scheduler.super-admin.full-permit"
	PermDispatcherFull = "pickup-scheduler.dispatcher.full-permit"
	PermWarehouseFull  = "pickup-scheduler.warehouse.full-permit"
	PermCustomerFull   = "pickup-scheduler.customer.full-permit"

	// Special permissions
	PermAny = "any"
)
