package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/fog-offload.net/internal/adapter/httpclient"
	"gitlab.com/fog-offload.net/internal/adapter/logging"
	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/producer"
)

func main() {
	if err := config.InitReader(os.Args); err != nil {
		log.Fatal(err)
	}

	sysCfg := config.NewSystemConfig()
	logger := logging.NewZapLoggerWithLevel(sysCfg.Level())
	defer logger.Sync()

	producerCfg := config.NewProducerCfg()
	logger.Info("Starting task producer", "manager", producerCfg.ManagerURL, "quota", producerCfg.Quota, "window", producerCfg.QuotaWindow)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := httpclient.NewManagerClient(producerCfg.ManagerURL, httpclient.NewHTTPClient(producerCfg.RequestTimeout, 1))
	p := producer.NewProducer(producerCfg, producer.NewGenerator(producerCfg.Seed), client, logger)
	p.Run(ctx)
}
