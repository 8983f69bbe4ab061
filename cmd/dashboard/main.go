package main

import (
	"context"
	"log"
	"os"

	"github.com/cryptobulldev/userdash/internal/buildinfo"
	"github.com/cryptobulldev/userdash/internal/client/cli"
	"github.com/cryptobulldev/userdash/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
