package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/db"
	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/membership-service/internal/organization"
	"github.com/alecthomas/kong"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type cli struct {
	DryRun    bool          `help:"Report organizations missing an admin without changing anything."`
	Timeout   time.Duration `help:"Overall deadline for the run." default:"10m"`
	LogLevel  string        `help:"Log level." default:"info" env:"LOG_LEVEL"`
	JSON      bool          `help:"Print the report as JSON on stdout."`
	NoPublish bool          `help:"Do not publish repair events even if RabbitMQ is enabled."`
}

func main() {
	_ = godotenv.Load()

	var c cli
	kong.Parse(&c,
		kong.Name("repair"),
		kong.Description("Assigns the admin membership to organization creators left without one by a partial create."),
	)
	logger.Setup(c.LogLevel, "text")
	log := logger.New().WithField("component", "repair")

	var dbCfg db.Config
	var mqCfg messaging.Config
	if err := env.Parse(&dbCfg); err != nil {
		log.WithError(err).Fatal("Failed to parse database configuration")
	}
	if err := env.Parse(&mqCfg); err != nil {
		log.WithError(err).Fatal("Failed to parse messaging configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	database, err := db.Connect(ctx, dbCfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	var publisher messaging.PublisherInterface
	if mqCfg.Enabled && !c.NoPublish && !c.DryRun {
		p, err := messaging.NewPublisher(ctx, mqCfg)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, repair events will not be published")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	report, err := organization.NewRepairService(organization.NewPostgresStore(database), publisher).
		RepairMissingAdmins(ctx, c.DryRun)
	if err != nil {
		log.WithError(err).Fatal("Repair failed")
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	}
	if len(report.Failed) > 0 {
		log.Errorf("%d organizations could not be repaired", len(report.Failed))
		os.Exit(1)
	}
}
