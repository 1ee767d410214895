package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/pukkaprice-backend/pkg/e"
	"github.com/DRSN-tech/pukkaprice-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ImageStorageLocal = "local"
	ImageStorageMinio = "minio"
)

type Config struct {
	Env             string
	ShutdownTimeout time.Duration
	Http            *HTTPConfig
	Grpc            *GRPCConfig
	Db              *PGDBCfg
	Images          *ImagesCfg
	Minio           *MinIOCfg // nil, если изображения хранятся локально
	Kafka           *KafkaCfg // nil, если KAFKA_BROKERS не задан
}

// IsDevelopment сообщает, можно ли отдавать клиенту диагностические детали ошибок.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	SwaggerURL   string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
	SSLMode          string
	MigrationsSource string
}

// DSN собирает строку подключения к PostgreSQL.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type ImagesCfg struct {
	Storage      string // local | minio
	UploadsDir   string // каталог для локального хранилища
	BaseURL      string // публичный адрес, к которому добавляется /uploads/<имя файла>
	MaxImageSize int64
	// CleanupInterval — период удаления файлов, на которые не ссылается ни один товар. 0 отключает.
	CleanupInterval time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string
	BucketName        string
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int

	OutboxBatchSize    int
	OutboxPollInterval time.Duration
	OutboxStuckTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	images, err := loadImagesCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var minio *MinIOCfg
	if images.Storage == ImageStorageMinio {
		if minio, err = loadMinIOCfg(log); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	const defaultShutdownTimeout = 15 * time.Second
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		log.Errorf(err, "invalid SHUTDOWN_TIMEOUT")
		return nil, e.Wrap("SHUTDOWN_TIMEOUT", e.ErrIncorrectEnvVariable)
	}

	return &Config{
		Env:             getEnvOrDefault("APP_ENV", EnvDevelopment),
		ShutdownTimeout: shutdownTimeout,
		Http:            http,
		Grpc:            loadGRPCConfig(),
		Db:              db,
		Images:          images,
		Minio:           minio,
		Kafka:           kafka,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "3001"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultCORSOrigins  = "http://localhost:3000"
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		CORSOrigins:  splitList(getEnvOrDefault("CORS_ORIGINS", defaultCORSOrigins)),
		SwaggerURL:   getEnvOrDefault("SWAGGER_URL", "http://localhost:"+port+"/swagger/doc.json"),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost             = "localhost"
		defaultPort             = "5432"
		defaultSSLMode          = "disable"
		defaultMigrationsSource = "file://db/migrations"
	)

	required := map[string]string{}
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		value := getEnv(key)
		if value == "" {
			err := fmt.Errorf("%s is required", key)
			log.Errorf(err, "missing %s", key)
			return nil, err
		}
		required[key] = value
	}

	return &PGDBCfg{
		Host:             getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:             getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:             required["POSTGRES_USER"],
		Password:         required["POSTGRES_PASSWORD"],
		DBName:           required["POSTGRES_DB"],
		SSLMode:          getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MigrationsSource: getEnvOrDefault("MIGRATIONS_SOURCE", defaultMigrationsSource),
	}, nil
}

func loadImagesCfg(log logger.Logger) (*ImagesCfg, error) {
	const (
		defaultUploadsDir   = "uploads"
		defaultBaseURL      = "http://localhost:3001"
		defaultMaxImageSize = 5 << 20
		defaultCleanup      = time.Duration(0)
	)

	storage := strings.ToLower(getEnvOrDefault("IMAGE_STORAGE", ImageStorageLocal))
	if storage != ImageStorageLocal && storage != ImageStorageMinio {
		err := fmt.Errorf("IMAGE_STORAGE must be %q or %q, got %q", ImageStorageLocal, ImageStorageMinio, storage)
		log.Errorf(err, "invalid IMAGE_STORAGE")
		return nil, err
	}

	maxSize, err := parseIntEnv("MAX_IMAGE_SIZE", defaultMaxImageSize)
	if err != nil || maxSize <= 0 {
		log.Errorf(err, "invalid MAX_IMAGE_SIZE")
		return nil, e.Wrap("MAX_IMAGE_SIZE", e.ErrIncorrectEnvVariable)
	}

	cleanup, err := parseDurationEnv("IMAGE_CLEANUP_INTERVAL", defaultCleanup)
	if err != nil || cleanup < 0 {
		log.Errorf(err, "invalid IMAGE_CLEANUP_INTERVAL")
		return nil, e.Wrap("IMAGE_CLEANUP_INTERVAL", e.ErrIncorrectEnvVariable)
	}

	return &ImagesCfg{
		Storage:         storage,
		UploadsDir:      getEnvOrDefault("UPLOADS_DIR", defaultUploadsDir),
		BaseURL:         strings.TrimRight(getEnvOrDefault("IMAGE_BASE_URL", defaultBaseURL), "/"),
		MaxImageSize:    int64(maxSize),
		CleanupInterval: cleanup,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL     = false
		defaultEndpoint   = "minio:9000"
		defaultBucketName = "product-images"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucketName),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

// loadKafkaCfg возвращает nil без ошибки, если брокеры не заданы: публикация событий отключена.
func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic             = "product-events"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultBatchSize         = 100
		defaultPollInterval      = 5 * time.Second
		defaultStuckTimeout      = 5 * time.Minute
	)

	brokers := splitList(getEnv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		return nil, nil
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	batchSize, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultBatchSize)
	if err != nil || batchSize <= 0 {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", e.ErrIncorrectEnvVariable)
	}

	pollInterval, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultPollInterval)
	if err != nil || pollInterval <= 0 {
		return nil, e.Wrap("OUTBOX_POLL_INTERVAL", e.ErrIncorrectEnvVariable)
	}

	stuckTimeout, err := parseDurationEnv("OUTBOX_STUCK_TIMEOUT", defaultStuckTimeout)
	if err != nil || stuckTimeout <= 0 {
		return nil, e.Wrap("OUTBOX_STUCK_TIMEOUT", e.ErrIncorrectEnvVariable)
	}

	return &KafkaCfg{
		Brokers:            brokers,
		Topic:              getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:         partitions,
		ReplicationFactor:  replicationFactor,
		NetworkMode:        getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		OutboxBatchSize:    batchSize,
		OutboxPollInterval: pollInterval,
		OutboxStuckTimeout: stuckTimeout,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

// splitList разбивает строку по запятым, отбрасывая пустые элементы.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
