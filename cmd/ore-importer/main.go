// ore-importer is a one-shot command: it fetches one month of timesheet
// entries from the configured source, stores them, and asks the worker to
// recompute the month.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"ore/internal/amqp"
	"ore/internal/cli"
	"ore/internal/log"
	"ore/internal/timesheet"
	gsheet "ore/internal/timesheet/google"
	mem "ore/internal/timesheet/memory"
)

func main() {
	now := time.Now()
	year := flag.Int("year", now.Year(), "billing year to import")
	month := flag.Int("month", int(now.Month()), "billing month to import (1-12)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentImporter)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx := context.Background()

	var source timesheet.EntrySource
	switch cfg.EntrySource {
	case "sheets":
		client, err := gsheet.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		source = client
		logger.Info("Using Google Sheets entry source", log.FieldSpreadsheetID, cfg.GoogleSpreadsheetID)
	default:
		source = mem.New()
		logger.Warn("Using empty memory entry source; nothing will be imported")
	}

	entries, err := source.FetchEntries(ctx, *year, *month)
	if err != nil {
		logger.Error("Failed to fetch entries", log.FieldError, err, log.FieldYear, *year, log.FieldMonth, *month)
		os.Exit(1)
	}

	if err := repo.ImportEntries(ctx, cfg.EntrySource, *year, *month, entries); err != nil {
		logger.Error("Failed to import entries", log.FieldError, err, log.FieldYear, *year, log.FieldMonth, *month)
		os.Exit(1)
	}

	logger.Info("Imported timesheet entries",
		log.FieldOperation, log.OpImport,
		log.FieldYear, *year,
		log.FieldMonth, *month,
		log.FieldEntryCount, len(entries))

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	if err := amqpClient.PublishMonthRecompute(ctx, *year, *month, "import"); err != nil {
		logger.Error("Failed to publish recompute message", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Import complete", log.FieldYear, *year, log.FieldMonth, *month)
}
