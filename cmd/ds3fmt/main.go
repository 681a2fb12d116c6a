package main

import (
	"log"
	"os"

	"github.com/dargueta/ds3fs/fs"
	"github.com/dargueta/ds3fs/geometry"
	"github.com/dargueta/ds3fs/internal/cliutil"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Create or wipe a ds3 disk image",
		ArgsUsage: "IMAGE_PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Value: "medium", Usage: "named image geometry, see ds3fmt --list-presets"},
			&cli.BoolFlag{Name: "list-presets"},
		},
		Action: formatImage,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3fmt: %s", err.Error())
	}
}

func formatImage(c *cli.Context) error {
	if c.Bool("list-presets") {
		for _, slug := range geometry.Names() {
			preset, _ := geometry.Lookup(slug)
			log.Printf("%-10s %s (%d blocks, %d inodes)", preset.Slug, preset.Name, preset.TotalBlocks, preset.NumInodes)
		}
		return nil
	}

	if c.Args().Len() != 1 {
		return cli.Exit("expected exactly one argument: IMAGE_PATH", 1)
	}

	preset, err := geometry.Lookup(c.String("preset"))
	if err != nil {
		return err
	}

	f, dev, err := cliutil.CreateDevice(c.Args().First(), preset.TotalBlocks)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fs.Format(dev, preset.NumInodes); err != nil {
		return err
	}

	log.Printf("formatted %s: %s (%d blocks, %d inodes)", c.Args().First(), preset.Name, preset.TotalBlocks, preset.NumInodes)
	return nil
}
