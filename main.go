package main

import (
	"claimflow/bizerror"
	"claimflow/client/es"
	"claimflow/common"
	"claimflow/config"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"claimflow/event"
	"claimflow/idgen"
	"claimflow/indices"
	"claimflow/indices/search"
	"claimflow/infra/tracing"
	"claimflow/persistence"
	"claimflow/security"
	"claimflow/servehttp"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("service start")
	conf := config.InitConfig()

	if *conf.Tracing.Enabled {
		closer, err := tracing.InitGlobalTracer(common.ServiceName)
		if err != nil {
			logrus.Fatalf("tracer initialization failed %v", err)
		}
		defer closer.Close()
	}

	dbConfig := &persistence.DatabaseConfig{DriverType: conf.Database.DriverType, DriverArgs: conf.Database.DriverArgs}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()

	store := claim.NewGormStore(ds)
	gormDirectory := actor.NewGormDirectory(ds)

	// database migration (race condition)
	if *conf.Database.MigrateOnStart {
		if err := gormDirectory.AutoMigrate(); err != nil {
			logrus.Fatalf("database migration failed %v", err)
		}
		if err := store.AutoMigrate(); err != nil {
			logrus.Fatalf("database migration failed %v", err)
		}
	}

	var directory actor.Directory = gormDirectory
	if expiration := conf.DirectoryCacheExpiration(); expiration > 0 {
		directory = actor.NewCachedDirectory(gormDirectory, expiration)
	}
	lifecycle := claim.NewService(store, directory, claim.SystemClock, idgen.NewWorker())

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.ServiceName)
	})

	servehttp.RegisterClaimHandler(engine, lifecycle, security.ActingFilter())
	servehttp.RegisterClaimItemHandler(engine, lifecycle, security.ActingFilter())
	servehttp.RegisterClaimDecisionHandler(engine, lifecycle, security.ActingFilter())

	if conf.Elasticsearch.URL != "" {
		es.CreateClient(conf.Elasticsearch.URL)
		indexer := indices.NewIndexer(store, directory)
		event.EventHandlers = append(event.EventHandlers, indexer.IndexClaimEventHandle)
		indices.RegisterIndicesRestAPI(engine, indexer, security.ActingFilter())
		search.RegisterClaimSearchRestAPI(engine, security.ActingFilter())
	} else {
		logrus.Warn("elasticsearch is not configured, claim search is disabled")
	}

	servehttp.StartHTTPServer(engine, conf.App.Listen)
}
