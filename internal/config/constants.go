package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./storefront.db"

	// DefaultCurrencyAPIURL points at a local rates service; override with CURRENCY_API_URL.
	DefaultCurrencyAPIURL = "http://localhost:8191/rates"

	// DefaultCurrencyUpdateInterval is how often exchange rates are refreshed (180000 ms).
	DefaultCurrencyUpdateInterval = "3m"

	// DefaultNotificationDuration is how long a notification stays visible.
	DefaultNotificationDuration = "3s"

	// DefaultLanguage is the storefront language before the user picks one.
	DefaultLanguage = "tr"
)
