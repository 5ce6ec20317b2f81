package main

import (
	"context"
	"errors"
	"os"
	"time"

	"wealth/internal/amqp"
	"wealth/internal/cli"
	"wealth/internal/config"
	"wealth/internal/log"
	"wealth/internal/notify"
	"wealth/internal/scheduler"
	"wealth/internal/worker"
)

func main() {
	cfg, logger := cli.MustBootstrap(log.ComponentWorker, (*config.Config).ValidateMailWorker)

	logger.Info("Starting mail-worker",
		"queue", cfg.AMQPQueue,
		"smtp_host", cfg.SMTPHost)

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		Timeout:  cfg.DispatchTimeout,
	})
	if err != nil {
		logger.Error("Failed to initialize SMTP mailer", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	mailWorker := worker.NewMailWorker(mailer, cfg.DispatchTimeout)

	sched := scheduler.New(time.UTC, logger.WithComponent(log.ComponentScheduler).Logger)
	if err := sched.AddJob("purge-delivered", "@hourly", func(context.Context) {
		if n := mailWorker.PurgeDelivered(); n > 0 {
			logger.Debug("Purged delivery records", "count", n)
		}
	}); err != nil {
		logger.Error("Failed to schedule purge job", "error", err)
		os.Exit(1)
	}
	sched.Start()

	amqpLogger := logger.WithComponent(log.ComponentAMQP)
	consumeCtx := log.WithLogger(ctx, logger)
	go func() {
		for {
			err := amqpClient.ConsumeAlertEmails(consumeCtx, mailWorker.HandleAlertEmail)
			if ctx.Err() != nil {
				return
			}
			amqpLogger.Error("Message consumption stopped, reconnecting", log.FieldError, err)
			if err := amqpClient.ReconnectWithBackoff(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					amqpLogger.Error("Reconnect failed", log.FieldError, err)
				}
				return
			}
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down mail-worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", "error", err)
		return
	}
	logger.Info("Mail-worker shutdown complete")
}
