package main

import (
	"log"
	"net/http"
	"os"

	"github.com/dargueta/ds3fs/fs"
	"github.com/dargueta/ds3fs/internal/cliutil"
	"github.com/dargueta/ds3fs/service"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Serve a ds3 disk image's contents over HTTP",
		ArgsUsage: "IMAGE_PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "address to listen on"},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3serve: %s", err.Error())
	}
}

func serve(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("expected exactly one argument: IMAGE_PATH", 1)
	}

	f, dev, err := cliutil.OpenDevice(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	engine, err := fs.Mount(dev)
	if err != nil {
		return err
	}

	svc := service.New(dev, engine)
	handler := service.NewHandler(svc)

	log.Printf("serving %s on %s", c.Args().First(), c.String("addr"))
	return http.ListenAndServe(c.String("addr"), handler)
}
