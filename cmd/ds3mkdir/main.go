package main

import (
	"log"
	"os"
	"strconv"

	"github.com/dargueta/ds3fs/fs"
	"github.com/dargueta/ds3fs/internal/cliutil"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Create a directory under a given parent inode inside a ds3 disk image",
		ArgsUsage: "IMAGE_PATH PARENT_INODE NAME",
		Action:    makeDirectory,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3mkdir: %s", err.Error())
	}
}

func makeDirectory(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return cli.Exit("expected exactly three arguments: IMAGE_PATH PARENT_INODE NAME", 1)
	}

	parent, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit("PARENT_INODE must be a non-negative integer", 1)
	}

	f, dev, err := cliutil.OpenDevice(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer f.Close()

	engine, err := fs.Mount(dev)
	if err != nil {
		return err
	}

	_, err = engine.Create(uint32(parent), fs.TypeDirectory, c.Args().Get(2))
	return err
}
