package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/reelspirit/backend/analyzer"
	"github.com/reelspirit/backend/collector"
	"github.com/reelspirit/backend/scanner"
	"github.com/reelspirit/backend/server"
	. "github.com/reelspirit/backend/utils"
	"github.com/reelspirit/backend/utils/dotenv"
	. "github.com/reelspirit/backend/utils/log"
	"gorm.io/gorm"
)

func newStatusStore() scanner.StatusStore {
	if os.Getenv("REDIS_HOST") == "" {
		Log.Info("REDIS_HOST not set, scan status kept in process memory")
		return scanner.NewMemoryStatusStore()
	}
	store, err := GetRedisStatusStore()
	if err != nil {
		Log.Warn("redis unreachable, falling back to in-memory scan status: ", err)
		return scanner.NewMemoryStatusStore()
	}
	return store
}

func main() {
	flag.Parse()
	InitLogger()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	DatabaseSetupAndMigration(db)

	newSession := func() (*gorm.DB, error) { return GetDBConnection() }

	scan := scanner.NewScanner(
		db,
		newSession,
		collector.NewInstagramClientFromEnv(),
		analyzer.NewPostAnalyzer(analyzer.NewGeminiClientFromEnv()),
		newStatusStore(),
		scanner.GoroutineRunner{},
		scanner.DefaultPageDelay,
	)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())

	server.RegisterRoutes(router, scan)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	Log.Info("api server starts up")
	router.Run(addr)
}
