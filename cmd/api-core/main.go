// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/backend"
	"github.com/gamemakerclub/api-core/core/backend/kss"
	"github.com/gamemakerclub/api-core/core/csql"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/notify"
	"github.com/gamemakerclub/api-core/core/store"
)

// Service holds the configuration for this service
//
// use POSTGRES="host=localhost port=5432 user=postgres dbname=postgres sslmode=disable"
// and POSTGRES_PASSWORD="docker". Without POSTGRES all data is kept in memory.
type Service struct {
	Postgres         string        `env:"POSTGRES,optional" description:"the connection string for the Postgres DB without password"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD,optional" description:"password to the Postgres DB"`
	Schema           string        `env:"SCHEMA,default=gamemaker" description:"the database schema"`
	Port             int           `env:"PORT,default=1025" description:"the port to listen on"`
	LogLevel         string        `env:"LOG_LEVEL,default=info" description:"the log level, one of trace, debug, info, warn, error"`
	JWTSecret        string        `env:"JWT_SECRET,optional" description:"the secret for bearer tokens, tokens are disabled without it"`
	TokenLifetime    time.Duration `env:"TOKEN_LIFETIME,default=24h" description:"the lifetime of bearer tokens"`
	KssDriver        string        `env:"KSS_DRIVER,optional" description:"the file storage driver, Local or AWSS3. Files are disabled without it"`
	KssPath          string        `env:"KSS_PATH,default=./files" description:"the base folder of the Local file storage driver"`
	AWSRegion        string        `env:"AWS_REGION,default=eu-central-1" description:"the AWS region"`
	AWSBucket        string        `env:"AWS_BUCKET,optional" description:"the S3 bucket of the AWSS3 file storage driver"`
	AWSAccessID      string        `env:"AWS_ACCESS_ID,optional" description:"the AWS access ID, the default credential chain is used without it"`
	AWSAccessKey     string        `env:"AWS_ACCESS_KEY,optional" description:"the AWS access key"`
	KafkaBrokers     string        `env:"KAFKA_BROKERS,optional" description:"comma separated list of kafka brokers for change notifications"`
	KafkaTopic       string        `env:"KAFKA_TOPIC,default=gamemaker.changes" description:"the kafka topic for change notifications"`
	SQSQueueURL      string        `env:"SQS_QUEUE_URL,optional" description:"the SQS queue for change notifications"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		panic(err)
	}

	level, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(level)
	rlog := logger.Default()

	var ds store.Datastore
	if service.Postgres != "" {
		db := csql.OpenWithSchema(service.Postgres, service.PostgresPassword, service.Schema)
		defer db.Close()
		ds, err = store.NewPostgres(db)
		if err != nil {
			panic(err)
		}
	} else {
		rlog.Warnln("POSTGRES is not set, all data is kept in memory")
		ds = store.NewMemory()
	}

	notifier, closers := service.notifier()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	driver, err := kss.New(service.kssConfiguration())
	if err != nil {
		panic(err)
	}

	router := mux.NewRouter()
	backend.New(&backend.Builder{
		DB:            ds,
		Router:        router,
		Notifier:      notifier,
		KssDriver:     driver,
		JWTSecret:     []byte(service.JWTSecret),
		TokenLifetime: service.TokenLifetime,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(service.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		rlog.Infoln("listen on port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rlog.WithError(err).Fatalln("cannot listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	rlog.Infoln("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		rlog.WithError(err).Errorln("cannot shut down gracefully")
	}
}

// notifier combines the configured notifiers. Changes are always logged.
func (s *Service) notifier() (core.Notifier, []func()) {
	rlog := logger.Default()
	notifiers := notify.Multi{notify.Log{}}
	var closers []func()

	if s.KafkaBrokers != "" {
		k := notify.NewKafka(strings.Split(s.KafkaBrokers, ","), s.KafkaTopic)
		closers = append(closers, func() {
			if err := k.Close(); err != nil {
				rlog.WithError(err).Errorln("cannot close kafka writer")
			}
		})
		notifiers = append(notifiers, k)
		rlog.Infoln("kafka notifications enabled on topic", s.KafkaTopic)
	}

	if s.SQSQueueURL != "" {
		options := []func(*config.LoadOptions) error{config.WithRegion(s.AWSRegion)}
		if s.AWSAccessID != "" {
			options = append(options, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(s.AWSAccessID, s.AWSAccessKey, "")))
		}
		cfg, err := config.LoadDefaultConfig(context.Background(), options...)
		if err != nil {
			panic(err)
		}
		notifiers = append(notifiers, notify.NewSQS(cfg, s.SQSQueueURL))
		rlog.Infoln("sqs notifications enabled")
	}
	return notifiers, closers
}

func (s *Service) kssConfiguration() kss.Configuration {
	switch kss.DriverType(s.KssDriver) {
	case kss.DriverTypeLocal:
		return kss.Configuration{
			DriverType:         kss.DriverTypeLocal,
			LocalConfiguration: &kss.LocalConfiguration{BasePath: s.KssPath},
		}
	case kss.DriverTypeAWSS3:
		return kss.Configuration{
			DriverType: kss.DriverTypeAWSS3,
			S3Configuration: &kss.S3Configuration{
				AccessID:      s.AWSAccessID,
				AccessKey:     s.AWSAccessKey,
				AWSBucketName: s.AWSBucket,
				AWSRegion:     s.AWSRegion,
			},
		}
	case kss.None:
		logger.Default().Infoln("no file storage configured")
		return kss.Configuration{}
	}
	panic("unknown KSS_DRIVER " + s.KssDriver)
}
