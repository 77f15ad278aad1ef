package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Variants() VariantRepository
	Vouchers() VoucherRepository
	Orders() OrderRepository
	Statistics() StatisticsRepository
	Notifications() NotificationRepository
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
