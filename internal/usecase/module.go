package usecase

import "go.uber.org/fx"

// Module provides the order lifecycle engine and admin authentication.
var Module = fx.Provide(
	NewOrderLifecycle,
	NewAdminAuthUseCase,
	NewCheckout,
)
