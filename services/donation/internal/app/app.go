package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/foodshare/foodshare/pkg"
	"github.com/foodshare/foodshare/pkg/event"
	"github.com/foodshare/foodshare/services/donation/internal/cache"
	"github.com/foodshare/foodshare/services/donation/internal/donation"
	"github.com/foodshare/foodshare/services/donation/internal/events"
	"github.com/foodshare/foodshare/services/donation/internal/mongo"
)

const (
	AppName    = "donation"
	AppVersion = "0.1.0"
)

// App encapsulates the donation service application
type App struct {
	config   *aqm.Config
	logger   aqm.Logger
	micro    *aqm.Micro
	baseRepo *mongo.BaseRepo
}

// New creates a new donation service application
func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize connects the store and wires every component into the micro service.
func (a *App) Initialize(ctx context.Context) (err error) {
	var opened closers
	defer func() {
		if err == nil {
			return
		}
		if closeErr := opened.closeAll(context.Background()); closeErr != nil {
			a.logger.Error("Cannot release connections after failed init", "error", closeErr)
		}
	}()

	a.baseRepo = mongo.NewBaseRepo(a.config, a.logger)
	if err := a.baseRepo.Start(ctx); err != nil {
		return fmt.Errorf("cannot start donation store: %w", err)
	}
	opened.add(a.baseRepo.Stop)

	db := a.baseRepo.GetDatabase()
	donationRepo := mongo.NewDonationRepo(db)
	actorRepo := mongo.NewActorRepo(db)

	if err := donation.ApplyDemoSeeds(ctx, a.config, a.baseRepo.GetDatabase, a.logger); err != nil {
		a.logger.Errorf("Demo seeding failed (non-fatal): %v", err)
	}

	lifecycles := []interface{}{
		aqm.LifecycleHooks{OnStop: a.baseRepo.Stop},
	}

	conn, err := pkg.ConnectNATS(pkg.NATSOptions{
		URL:  a.config.GetStringOrDef("nats.url", "nats://localhost:4222"),
		Name: AppName,
	}, a.logger)
	if err != nil {
		return err
	}
	bus := pkg.NewNATSBus(conn, a.logger)
	opened.add(func(context.Context) error { return bus.Close() })
	lifecycles = append(lifecycles, aqm.LifecycleHooks{
		OnStop: func(context.Context) error { return bus.Close() },
	})

	var collections aqmevents.Subscriber = bus
	if streamEnabled, _ := a.config.GetString("nats.stream.enabled"); streamEnabled == "true" {
		stream, err := pkg.NewNATSStream(ctx, conn, pkg.NATSStreamConfig{
			StreamName:   "FIELD_COLLECTIONS",
			Topic:        event.CollectionsTopic,
			ConsumerName: "donation-collections",
			MaxAge:       72 * time.Hour,
			MaxDeliver:   5,
			AckWait:      30 * time.Second,
		}, a.logger)
		if err != nil {
			return err
		}
		opened.add(func(context.Context) error { return stream.Close() })
		a.logger.Info("Collection confirmations consumed from JetStream", "stream", "FIELD_COLLECTIONS")
		collections = stream
		lifecycles = append(lifecycles, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return stream.Close() },
		})
	}

	deps := donation.ServiceDeps{
		Donations: donationRepo,
		Actors:    actorRepo,
		Publisher: bus,
	}

	trendCache, err := cache.NewTrendCache(a.config, a.logger)
	if err != nil {
		return err
	}
	if trendCache != nil {
		deps.TrendCache = trendCache
		lifecycles = append(lifecycles, trendCache)
	}

	service := donation.NewService(deps, a.logger)
	handler := donation.NewHandler(service, a.config, a.logger)

	collectionSubscriber := events.NewCollectionSubscriber(collections, service, a.logger)
	lifecycles = append(lifecycles, collectionSubscriber)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
