package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/config"
	app "github.com/kenfuse/kenfuse-api/internal/application"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router wires its modules from these singletons. Optional integrations
// stay nil interfaces until set, so services can tell "off" from "broken".

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	jwtManager  *helpers.JWTManager
	esClient    *elasticsearch.Client

	publisher   app.Publisher
	objectStore app.ObjectStore
	mpesa       app.MobileMoneyGateway
	card        app.CardGateway
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetRabbitPub(p *helpers.RabbitPublisher) {
	if p != nil {
		publisher = p
	}
}
func GetPublisher() app.Publisher { return publisher }

func SetGCSStore(s *helpers.GCSStore) {
	if s != nil {
		objectStore = s
	}
}
func GetObjectStore() app.ObjectStore { return objectStore }

func SetMpesa(g app.MobileMoneyGateway) { mpesa = g }
func GetMpesa() app.MobileMoneyGateway  { return mpesa }
func SetCard(g app.CardGateway)         { card = g }
func GetCard() app.CardGateway          { return card }
