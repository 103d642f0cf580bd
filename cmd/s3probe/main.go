package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/AlexanderConserva/s3probe"
	"github.com/AlexanderConserva/s3probe/config"
	log "github.com/AlexanderConserva/s3probe/logger"
	"github.com/AlexanderConserva/s3probe/sigv4"
	"github.com/AlexanderConserva/s3probe/statsd"
)

var (
	configPath = kingpin.Flag("config", "specify config to use (omit to configure from environment variables)").Short('c').String()
)

func main() {
	kingpin.Parse()

	config, e := config.LoadConfig(*configPath)
	if e != nil {
		log.Log.Fatalw("Could not load config.", "error", e)
	}
	log.SetLogger(createLoggerWith(config.Logging.Level))

	signer, e := sigv4.NewSigner(sigv4.Credentials{
		AccessKeyID:     config.Credentials.AccessKeyID,
		SecretAccessKey: config.Credentials.SecretAccessKey,
		SessionToken:    config.Credentials.SessionToken,
	}, config.Region, "s3")
	if e != nil {
		log.Log.Fatalw("Could not create signer.", "error", e)
	}

	httpClient := &http.Client{
		Transport: sigv4.NewSigningTransport(signer, http.DefaultTransport, clock.New(), log.Log),
		Timeout:   60 * time.Second,
	}
	client := s3probe.NewListBucketsClient(
		httpClient,
		config.EndpointURL(),
		config.MaxResponseBodySizeBytes(),
		statsd.NewMetricsService(),
		log.Log)

	result, e := client.ListBuckets()
	if e != nil {
		log.Log.Fatalw("List buckets failed.", "error", e)
	}

	fmt.Printf("%v %v\n", result.StatusCode, http.StatusText(result.StatusCode))
	os.Stdout.Write(result.Body)
	fmt.Println()

	if result.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func createLoggerWith(logLevel string) *zap.SugaredLogger {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zapLogLevelFrom(logLevel)
	logger, e := loggerConfig.Build()
	if e != nil {
		log.Log.Panic(e)
	}
	return logger.Sugar()
}

func zapLogLevelFrom(configLogLevel string) zap.AtomicLevel {
	switch strings.ToLower(configLogLevel) {
	case "", "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	case "fatal":
		return zap.NewAtomicLevelAt(zap.FatalLevel)
	default:
		log.Log.Fatalw("Invalid log level in config", "log-level", configLogLevel)
		return zap.NewAtomicLevelAt(-1)
	}
}
