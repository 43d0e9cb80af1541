package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/labreserve/lab-reservation-backend/internal/api"
	"github.com/labreserve/lab-reservation-backend/internal/auth"
	"github.com/labreserve/lab-reservation-backend/internal/directory"
	"github.com/labreserve/lab-reservation-backend/internal/notify"
	"github.com/labreserve/lab-reservation-backend/internal/reservation"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	AMQPURL      string
	MaxAdvance   time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router       *gin.Engine
	JWTManager   *auth.JWTManager
	Reservations reservation.Service

	dispatcher *notify.Dispatcher
	amqp       *notify.AMQPPublisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Directory Module
	dirRepo := directory.NewPgxRepository(cfg.DBPool)
	dirService := directory.NewService(dirRepo)

	// Notification Sink: structured log always, AMQP when configured
	sinks := []notify.Notifier{notify.NewLogNotifier(cfg.Logger)}
	var amqpPub *notify.AMQPPublisher
	if cfg.AMQPURL != "" {
		var err error
		amqpPub, err = notify.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, amqpPub)
	}
	dispatcher := notify.NewDispatcher(cfg.Logger, sinks...)

	// Reservation Module
	rsvRepo := reservation.NewPgxRepository(cfg.DBPool)
	rsvService := reservation.NewService(
		rsvRepo,
		dirService,
		dispatcher,
		reservation.RoleAuthorizer{},
		cfg.Logger,
		reservation.Config{MaxAdvance: cfg.MaxAdvance},
	)

	// API Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		DirectoryService:   dirService,
		ReservationService: rsvService,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:       router,
		JWTManager:   jwtManager,
		Reservations: rsvService,
		dispatcher:   dispatcher,
		amqp:         amqpPub,
	}, nil
}

// Close drains the notification dispatcher and closes external connections.
func (c *Container) Close() {
	c.dispatcher.Close()
	if c.amqp != nil {
		c.amqp.Close()
	}
}
