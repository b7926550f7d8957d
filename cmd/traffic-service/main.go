package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"traffic-service/internal/core"
	"traffic-service/internal/hardware"
	"traffic-service/internal/logger"
	"traffic-service/internal/messaging"
)

func main() {
	var serviceLogLevel int
	var redisServer string
	var redisPort int
	var chipName string
	flag.IntVar(&serviceLogLevel, "log", 3, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	flag.StringVar(&redisServer, "redis-server", "127.0.0.1", "Redis server address")
	flag.IntVar(&redisPort, "redis-port", 6379, "Redis server port")
	flag.StringVar(&chipName, "chip", hardware.DefaultChip, "GPIO chip device name")

	flag.Parse()

	// Create standard logger with appropriate format
	var stdLogger *log.Logger
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, use minimal format
		stdLogger = log.New(os.Stdout, "", 0)
	} else {
		// Running interactively, use timestamps
		stdLogger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	}

	l := logger.NewLogger(stdLogger, logger.LogLevel(serviceLogLevel))

	l.Infof("Starting traffic service...")

	io := hardware.NewLinuxHardwareIO(chipName, l.WithTag("hardware"))
	redis := messaging.NewRedisClient(redisServer, redisPort, l.WithTag("redis"))

	system := core.NewTrafficSystem(io, redis, l.WithTag("core"))
	if err := system.Start(); err != nil {
		l.Fatalf("Failed to start system: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	l.Infof("Received signal %v, shutting down...", sig)
	system.Shutdown()
	l.Infof("Shutdown complete")
}
