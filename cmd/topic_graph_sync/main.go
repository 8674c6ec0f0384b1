package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/neurobridge-tutor/internal/app"
)

func main() {
	var path string
	flag.StringVar(&path, "file", "", "YAML topic catalog to sync")
	flag.Parse()
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Println("usage: topic_graph_sync -file catalog.yaml")
		os.Exit(2)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("read catalog: %v\n", err)
		os.Exit(1)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	res, err := application.Services.Catalog.Sync(context.Background(), raw)
	if err != nil {
		fmt.Printf("sync catalog: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
}
