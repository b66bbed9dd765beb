// Package main starts the turnsync watch process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	turnsynccmd "github.com/louisbranch/turnsync/internal/cmd/turnsync"
)

func main() {
	cfg, err := turnsynccmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[TURNSYNC] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := turnsynccmd.Run(ctx, cfg); err != nil {
		log.Fatalf("watch: %v", err)
	}
}
