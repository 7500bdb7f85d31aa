package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	cm "videodl/common"
	dm "videodl/db"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "config.ini", "Path to the ini config")
}

func main() {
	flag.Parse()
	logger := cm.NewLogger("", 0, cm.ConsoleColor())

	config, err := cm.LoadConfig(configPath)
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if config.DB.DBPath == "" {
		logger.Fatalf("database.dbPath is not set, downloads are not recorded")
	}
	ledger, err := dm.Open(config.DB.DBPath)
	if err != nil {
		logger.Fatalf("Open ledger %s: %v", config.DB.DBPath, err)
	}
	defer ledger.Close()

	fmt.Println("########################## Look up downloaded videos ##########################")
	fmt.Println("Press ctrl + c to quit")
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("File name (e.g. video_42.mp4)>>>")
		if !in.Scan() {
			return
		}
		lookup(ledger, strings.TrimSpace(in.Text()))
	}
}

func lookup(ledger *dm.Ledger, fname string) {
	if fname == "" {
		fmt.Println("Empty input!")
		return
	}
	lis, err := ledger.FindByName(context.Background(), fname)
	if err != nil {
		fmt.Printf("Query [%s] failed: %s\n", fname, err.Error())
		return
	}
	if len(lis) == 0 {
		fmt.Printf("No record for [%s]\n", fname)
		return
	}
	for i, v := range lis {
		fmt.Printf(`##########################
[%s] result %d:
channel id: %d
message id: %d
path: %s
size: %s
finished: %s
message: %s
`, fname, i+1, v.ChannelID, v.MessageID, v.Path, humanize.IBytes(uint64(v.Size)), v.Finished, v.Message)
	}
}
