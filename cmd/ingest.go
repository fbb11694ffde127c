package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/server"
	"github.com/indieinfra/ingest/server/util"
)

func main() {
	log.SetPrefix("ingest: ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile | log.Lmsgprefix)

	configFile := flag.String("config", "config.yml", "Path to the configuration file (i.e., /etc/ingest.yml)")
	flag.Parse()

	if len(strings.Trim(*configFile, " ")) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	log.Println("loading configuration...")
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Printf("failed to build logger: %v", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	}
	util.RouteStdLog(logger)

	logger.Info().Str("processing_url", cfg.Processing.ProcessingURL()).Str("sink", cfg.Sink.Strategy).Msg("starting http server")
	if err := server.StartServer(cfg, &logger); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
