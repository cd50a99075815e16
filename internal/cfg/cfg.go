package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/go-recommender/pkg/e"
	"github.com/DRSN-tech/go-recommender/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Minio     *MinIOCfg
	Http      *HTTPConfig
	Grpc      *GRPCConfig
	Db        *PGDBCfg
	Qdrant    *QdrantCfg
	Redis     *RedisCfg
	Kafka     *KafkaCfg
	LLM       *LLMCfg
	Recommend *RecommendCfg
	Session   *SessionCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	BatchSize         int // сколько событий outbox забирается за один проход
}

type MinIOCfg struct {
	MinioEndpoint     string        // Адрес конечной точки Minio
	BucketName        string        // Название бакета с изображениями товаров
	MinioRootUser     string        // Имя пользователя для доступа к Minio
	MinioRootPassword string        // Пароль для доступа к Minio
	MinioUseSSL       bool          // Подключаться к Minio по TLS
	PresignTTL        time.Duration // Время жизни presigned-ссылки на изображение
}

type HTTPConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
	RateLimitRequests  int // лимит запросов к LLM-маршрутам на один IP за окно
	RateLimitWindow    time.Duration
	SwaggerURL         string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
}

// Enabled сообщает, настроен ли Qdrant. Без него поиск идёт через pgvector или линейный проход.
func (q *QdrantCfg) Enabled() bool {
	return q != nil && q.Host != ""
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

// LLMCfg описывает провайдера эмбеддингов и генерации текста.
type LLMCfg struct {
	Provider           string // gemini | none
	GeminiProject      string
	GeminiLocation     string
	EmbeddingDimension int
	MaxRetries         int
	RetryBaseDelay     time.Duration
	RetryMaxDelay      time.Duration
	BreakerTimeout     time.Duration // сколько breaker остаётся открытым
	BreakerMinRequests uint32
	BreakerFailureRate float64
}

// Enabled сообщает, подключён ли внешний LLM-провайдер.
func (l *LLMCfg) Enabled() bool {
	return l != nil && l.Provider != ProviderNone
}

const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// RecommendCfg — параметры ранжирования и таймауты внешних вызовов.
type RecommendCfg struct {
	DefaultLimit      int
	ChatLimit         int
	MaxLimit          int
	CandidateCap      int
	FeaturedLimit     int
	RankerBackend     string // auto | linear | qdrant | pgvector
	IndexThreshold    int
	ProfileStrategy   string // mean | latest
	FollowUpWeight    float64
	StorageTimeout    time.Duration
	SearchTimeout     time.Duration
	EmbeddingTimeout  time.Duration
	CompletionTimeout time.Duration
	IndexSyncBatch    int
}

const (
	RankerAuto     = "auto"
	RankerLinear   = "linear"
	RankerQdrant   = "qdrant"
	RankerPgvector = "pgvector"
)

// SessionCfg — хранилище состояния диалога.
type SessionCfg struct {
	Backend    string // memory | redis
	Size       int
	TTL        time.Duration
	CookieName string
}

const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	llm, err := loadLLMCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log, llm.EmbeddingDimension)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recommend, err := loadRecommendCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	session, err := loadSessionCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:     minio,
		Http:      http,
		Grpc:      loadGRPCConfig(),
		Db:        db,
		Qdrant:    qdrant,
		Redis:     redis,
		Kafka:     kafka,
		LLM:       llm,
		Recommend: recommend,
		Session:   session,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultBatchSize         = 10
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := splitList(brokerStr)

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
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
	if err != nil {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		BatchSize:         batchSize,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL     = false
		defaultEndpoint   = "minio:9000"
		defaultBucket     = "products"
		defaultPresignTTL = time.Hour
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	presignTTL, err := parseDurationEnv("MINIO_PRESIGN_TTL", defaultPresignTTL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_PRESIGN_TTL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PresignTTL:        presignTTL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort              = "8080"
		defaultReadTimeout       = 5 * time.Second
		defaultWriteTimeout      = 60 * time.Second
		defaultIdleTimeout       = 60 * time.Second
		defaultCORSOrigins       = "*"
		defaultRateLimitRequests = 30
		defaultRateLimitWindow   = time.Minute
		defaultSwaggerURL        = "http://localhost:8080/swagger/doc.json"
	)

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

	rateLimit, err := parseIntEnv("HTTP_RATE_LIMIT", defaultRateLimitRequests)
	if err != nil {
		log.Errorf(err, "invalid HTTP_RATE_LIMIT")
		return nil, err
	}

	rateWindow, err := parseDurationEnv("HTTP_RATE_WINDOW", defaultRateLimitWindow)
	if err != nil {
		log.Errorf(err, "invalid HTTP_RATE_WINDOW")
		return nil, err
	}

	return &HTTPConfig{
		Port:               getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
		RateLimitRequests:  rateLimit,
		RateLimitWindow:    rateWindow,
		SwaggerURL:         getEnvOrDefault("SWAGGER_URL", defaultSwaggerURL),
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

// LoadDB загружает только настройки PostgreSQL. Нужна командам, которым не нужен весь сервис (migrate).
func LoadDB(log logger.Logger) (*PGDBCfg, error) {
	return loadPGDBCfg(log)
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost           = "localhost"
		defaultPort           = "5432"
		defaultSSLMode        = "disable"
		defaultMaxConns       = 10
		defaultMigrationsPath = "db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", defaultMaxConns)
	if err != nil {
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, err
	}

	return &PGDBCfg{
		Host:           getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:           getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:           user,
		Password:       password,
		DBName:         dbName,
		SSLMode:        getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns:       int32(maxConns),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}, nil
}

func loadQdrantCfg(logger logger.Logger, vectorSize int) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultCollection     = "products"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           uint64(vectorSize),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ProductTTL:  productTTL,
	}, nil
}

func loadLLMCfg(log logger.Logger) (*LLMCfg, error) {
	const (
		defaultLocation           = "us-central1"
		defaultEmbeddingDimension = 768
		defaultMaxRetries         = 3
		defaultRetryBase          = 500 * time.Millisecond
		defaultRetryMax           = 5 * time.Second
		defaultBreakerTimeout     = time.Minute
		defaultBreakerMinRequests = 5
		defaultBreakerFailureRate = 0.6
	)

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini))
	project := getEnv("GEMINI_PROJECT")

	switch provider {
	case ProviderGemini:
		if project == "" {
			err := fmt.Errorf("GEMINI_PROJECT is required for LLM_PROVIDER=%s", provider)
			log.Errorf(err, "missing GEMINI_PROJECT")
			return nil, err
		}
	case ProviderNone:
	default:
		err := fmt.Errorf("unknown LLM_PROVIDER %q", provider)
		log.Errorf(err, "invalid LLM_PROVIDER")
		return nil, err
	}

	dimension, err := parseIntEnv("EMBEDDING_DIMENSION", defaultEmbeddingDimension)
	if err != nil || dimension <= 0 {
		log.Errorf(err, "invalid EMBEDDING_DIMENSION")
		return nil, e.ErrIncorrectEnvVariable
	}

	maxRetries, err := parseIntEnv("LLM_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid LLM_MAX_RETRIES")
		return nil, err
	}

	retryBase, err := parseDurationEnv("LLM_RETRY_BASE_DELAY", defaultRetryBase)
	if err != nil {
		log.Errorf(err, "invalid LLM_RETRY_BASE_DELAY")
		return nil, err
	}

	retryMax, err := parseDurationEnv("LLM_RETRY_MAX_DELAY", defaultRetryMax)
	if err != nil {
		log.Errorf(err, "invalid LLM_RETRY_MAX_DELAY")
		return nil, err
	}

	breakerTimeout, err := parseDurationEnv("LLM_BREAKER_TIMEOUT", defaultBreakerTimeout)
	if err != nil {
		log.Errorf(err, "invalid LLM_BREAKER_TIMEOUT")
		return nil, err
	}

	minRequests, err := parseIntEnv("LLM_BREAKER_MIN_REQUESTS", defaultBreakerMinRequests)
	if err != nil {
		log.Errorf(err, "invalid LLM_BREAKER_MIN_REQUESTS")
		return nil, err
	}

	failureRate, err := parseFloatEnv("LLM_BREAKER_FAILURE_RATE", defaultBreakerFailureRate)
	if err != nil {
		log.Errorf(err, "invalid LLM_BREAKER_FAILURE_RATE")
		return nil, err
	}

	return &LLMCfg{
		Provider:           provider,
		GeminiProject:      project,
		GeminiLocation:     getEnvOrDefault("GEMINI_LOCATION", defaultLocation),
		EmbeddingDimension: dimension,
		MaxRetries:         maxRetries,
		RetryBaseDelay:     retryBase,
		RetryMaxDelay:      retryMax,
		BreakerTimeout:     breakerTimeout,
		BreakerMinRequests: uint32(minRequests),
		BreakerFailureRate: failureRate,
	}, nil
}

func loadRecommendCfg(log logger.Logger) (*RecommendCfg, error) {
	const (
		defaultLimit          = 10
		defaultChatLimit      = 5
		defaultMaxLimit       = 50
		defaultCandidateCap   = 100
		defaultFeaturedLimit  = 10
		defaultIndexThreshold = 1000
		defaultFollowUpWeight = 0.0
		defaultStorage        = 3 * time.Second
		defaultSearch         = 5 * time.Second
		defaultEmbedding      = 15 * time.Second
		defaultCompletion     = 30 * time.Second
		defaultIndexSyncBatch = 256
	)

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"RECOMMEND_DEFAULT_LIMIT", defaultLimit, new(int)},
		{"RECOMMEND_CHAT_LIMIT", defaultChatLimit, new(int)},
		{"RECOMMEND_MAX_LIMIT", defaultMaxLimit, new(int)},
		{"RECOMMEND_CANDIDATE_CAP", defaultCandidateCap, new(int)},
		{"RECOMMEND_FEATURED_LIMIT", defaultFeaturedLimit, new(int)},
		{"RECOMMEND_INDEX_THRESHOLD", defaultIndexThreshold, new(int)},
		{"INDEX_SYNC_BATCH", defaultIndexSyncBatch, new(int)},
	}
	for _, v := range ints {
		n, err := parseIntEnv(v.key, v.def)
		if err != nil || n < 0 {
			log.Errorf(err, "invalid %s", v.key)
			return nil, e.Wrap(v.key, e.ErrIncorrectEnvVariable)
		}
		*v.dst = n
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"STORAGE_TIMEOUT", defaultStorage, new(time.Duration)},
		{"SEARCH_TIMEOUT", defaultSearch, new(time.Duration)},
		{"EMBEDDING_TIMEOUT", defaultEmbedding, new(time.Duration)},
		{"COMPLETION_TIMEOUT", defaultCompletion, new(time.Duration)},
	}
	for _, v := range durations {
		d, err := parseDurationEnv(v.key, v.def)
		if err != nil {
			log.Errorf(err, "invalid %s", v.key)
			return nil, err
		}
		*v.dst = d
	}

	backend := strings.ToLower(getEnvOrDefault("RANKER_BACKEND", RankerAuto))
	switch backend {
	case RankerAuto, RankerLinear, RankerQdrant, RankerPgvector:
	default:
		err := fmt.Errorf("unknown RANKER_BACKEND %q", backend)
		log.Errorf(err, "invalid RANKER_BACKEND")
		return nil, err
	}

	strategy := strings.ToLower(getEnvOrDefault("PROFILE_STRATEGY", "mean"))
	if strategy != "mean" && strategy != "latest" {
		err := fmt.Errorf("unknown PROFILE_STRATEGY %q", strategy)
		log.Errorf(err, "invalid PROFILE_STRATEGY")
		return nil, err
	}

	weight, err := parseFloatEnv("CHAT_FOLLOWUP_WEIGHT", defaultFollowUpWeight)
	if err != nil || weight < 0 {
		log.Errorf(err, "invalid CHAT_FOLLOWUP_WEIGHT")
		return nil, e.Wrap("CHAT_FOLLOWUP_WEIGHT", e.ErrIncorrectEnvVariable)
	}

	return &RecommendCfg{
		DefaultLimit:      *ints[0].dst,
		ChatLimit:         *ints[1].dst,
		MaxLimit:          *ints[2].dst,
		CandidateCap:      *ints[3].dst,
		FeaturedLimit:     *ints[4].dst,
		IndexThreshold:    *ints[5].dst,
		IndexSyncBatch:    *ints[6].dst,
		RankerBackend:     backend,
		ProfileStrategy:   strategy,
		FollowUpWeight:    weight,
		StorageTimeout:    *durations[0].dst,
		SearchTimeout:     *durations[1].dst,
		EmbeddingTimeout:  *durations[2].dst,
		CompletionTimeout: *durations[3].dst,
	}, nil
}

func loadSessionCfg(log logger.Logger) (*SessionCfg, error) {
	const (
		defaultSize       = 10_000
		defaultTTL        = 30 * time.Minute
		defaultCookieName = "session_id"
	)

	backend := strings.ToLower(getEnvOrDefault("SESSION_BACKEND", SessionMemory))
	if backend != SessionMemory && backend != SessionRedis {
		err := fmt.Errorf("unknown SESSION_BACKEND %q", backend)
		log.Errorf(err, "invalid SESSION_BACKEND")
		return nil, err
	}

	size, err := parseIntEnv("SESSION_CACHE_SIZE", defaultSize)
	if err != nil || size <= 0 {
		log.Errorf(err, "invalid SESSION_CACHE_SIZE")
		return nil, e.Wrap("SESSION_CACHE_SIZE", e.ErrIncorrectEnvVariable)
	}

	ttl, err := parseDurationEnv("SESSION_TTL", defaultTTL)
	if err != nil {
		log.Errorf(err, "invalid SESSION_TTL")
		return nil, err
	}

	return &SessionCfg{
		Backend:    backend,
		Size:       size,
		TTL:        ttl,
		CookieName: getEnvOrDefault("SESSION_COOKIE_NAME", defaultCookieName),
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

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return f, nil
}

// splitList разбирает список через запятую, пропуская пустые элементы.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
