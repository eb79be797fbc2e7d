package config

import "go.uber.org/fx"

// Module exposes the configuration loader and its grouped sections.
var Module = fx.Provide(
	Load,
	func(cfg *Config) MailConfig { return cfg.Mail },
	func(cfg *Config) ShopConfig { return cfg.Shop },
)
