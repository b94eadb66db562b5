package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWT     JWT     `envPrefix:"JWT_"`
	OTP     OTP     `envPrefix:"OTP_"`
	Gateway Gateway `envPrefix:"GATEWAY_"`
	Storage Storage `envPrefix:"STORAGE_"`
}

// Gateway holds the payment gateway merchant credentials and endpoints.
type Gateway struct {
	MerchantID string `env:"MERCHANT_ID"`
	Password   string `env:"PASSWORD"`
	PaymentURL string `env:"PAYMENT_URL"`
	StatusURL  string `env:"STATUS_URL"`
	Currency   string `env:"CURRENCY" envDefault:"SAR"`
}

type JWT struct {
	Secret string `env:"SECRET"`
}

type OTP struct {
	Secret        string `env:"SECRET"`
	Length        int    `env:"LENGTH" envDefault:"6"`
	ExpiryMinutes int    `env:"EXPIRY_MINUTES" envDefault:"5"`
	MaxPerWindow  int    `env:"MAX_PER_WINDOW" envDefault:"5"`
}

type Storage struct {
	BaseURL       string `env:"BASE_URL"`
	SigningSecret string `env:"SIGNING_SECRET"`
	ExpirySeconds int    `env:"EXPIRY_SECONDS" envDefault:"3600"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
