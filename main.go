package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/room-chat-demo/logging"
	"github.com/example/room-chat-demo/modules/api"
	"github.com/example/room-chat-demo/modules/broadcast"
	"github.com/example/room-chat-demo/modules/presence"
	"github.com/example/room-chat-demo/modules/rooms"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Room Chat Demo - Ephemeral Code-Scoped Rooms ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := logging.New(os.Getenv("APP_ENV"))

	// Create modules
	roomsModule := rooms.NewModule(logger.WithModule("rooms"))
	broadcastModule := broadcast.NewModule(logger.WithModule("broadcast"))
	presenceModule := presence.NewModule(logger.WithModule("presence"))
	apiModule := api.NewModule(logger.WithModule("api"))

	// Inject broadcast hub into API module
	// (This is done manually because the hub is not exposed via ServiceContainer)
	apiModule.SetHub(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - rooms: Core domain (ServiceProviderModule + EventEmitterModule)
	// - broadcast: WebSocket hub + event consumer for cross-room announcements
	// - presence: Event consumer aggregating activity stats
	// - api: Driving adapter (Fiber HTTP/WebSocket server, depends on rooms + presence)
	app.Register(roomsModule)
	app.Register(broadcastModule)
	app.Register(presenceModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Room model:")
	log.Println("  - Rooms are identified by 6-character codes, created on demand")
	log.Println("  - Sessions join by code; chat events fan out per room via the hub")
	log.Println("  - RoomCreated announcements reach every connected client")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health              - Health check")
	log.Println("  POST   /api/v1/rooms        - Create a new room")
	log.Println("  GET    /api/v1/rooms/:code  - Get room details")
	log.Println("  GET    /api/v1/stats        - Activity summary across rooms")
	log.Println("  GET    /api/v1/stats/:code  - Activity stats for one room")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", port)
	log.Println("  Message types: join_room, send_message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
