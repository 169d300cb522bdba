package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/kitlibrarian/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-l string   log level
//	-n int      due soon window, days
//	-o int      send hour, 0-23
//
// Args are filtered with flagx.FilterArgs first so flags owned by other
// components (like -c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-s", "-l", "-n", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.DueSoonDays, "n", config.DueSoonDays, "due soon window (in days)")
	fs.IntVar(&config.SendHour, "o", config.SendHour, "hour of day to send reminders")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
