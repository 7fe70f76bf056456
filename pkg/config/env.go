package config

const (
	EnvPrefix = "BOOKSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "BOOKSTORE_APP_ENV"
	EnvPort   = "BOOKSTORE_APP_PORT"

	EnvDBDSN  = "BOOKSTORE_DB_DSN"
	EnvDBHost = "BOOKSTORE_DB_HOST"
	EnvDBUser = "BOOKSTORE_DB_USER"
	EnvDBName = "BOOKSTORE_DB_NAME"

	EnvRedisURL = "BOOKSTORE_REDIS_URL"

	EnvJWTSecret              = "BOOKSTORE_JWT_SECRET"
	EnvJWTIssuer              = "BOOKSTORE_JWT_ISSUER"
	EnvJWTExpMins             = "BOOKSTORE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "BOOKSTORE_REFRESH_TOKEN_TTL_MINUTES"

	EnvUseSQLite = "BOOKSTORE_USE_SQLITE"

	EnvDiscountCountries   = "BOOKSTORE_DISCOUNT_COUNTRIES"
	EnvDiscountMaxSpanDays = "BOOKSTORE_DISCOUNT_MAX_SPAN_DAYS"

	EnvOutboxMaxAttempts = "BOOKSTORE_OUTBOX_MAX_ATTEMPTS"
	EnvGCPProjectID      = "BOOKSTORE_GCP_PROJECT_ID"
	EnvPubSubDomainTopic = "BOOKSTORE_PUBSUB_DOMAIN_TOPIC"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
