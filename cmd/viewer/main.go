// Command viewer lists the files relayed through the server, straight
// from the Badger index, without the server running.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chatwave/repositories"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,default=files_index"`
	LogLevel       string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if the server holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open file index: %v", err)
	}
	defer db.Close()

	index := repositories.NewFileIndexRepository(db, logs.GetLoggerFromString(config.LogLevel))
	files, err := index.List()
	if err != nil {
		log.Fatalf("Failed to list files: %v", err)
	}

	// 3. Render
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Uploaded At", "Sender", "Filename", "Stored Name", "MIME", "Size"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")

	for _, f := range files {
		table.Append([]string{
			f.UploadedAt.Format(time.RFC822),
			f.Sender,
			f.Filename,
			f.StoredName,
			f.MimeType,
			humanize.Bytes(uint64(f.Size)),
		})
	}

	fmt.Printf("%d relayed file(s)\n", len(files))
	table.Render()
}
