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
		Usage:     "Overwrite a destination file-inode from a host file",
		ArgsUsage: "IMAGE_PATH HOST_SOURCE_PATH IMAGE_DEST_INODE",
		Action:    copyIn,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3cp: %s", err.Error())
	}
}

func copyIn(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return cli.Exit("expected exactly three arguments: IMAGE_PATH HOST_SOURCE_PATH IMAGE_DEST_INODE", 1)
	}

	inum, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return cli.Exit("IMAGE_DEST_INODE must be a non-negative integer", 1)
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

	contents, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return err
	}

	n, err := engine.Write(uint32(inum), contents, len(contents))
	if err != nil {
		return err
	}
	if n != len(contents) {
		log.Printf("warning: only %d of %d bytes fit on the image", n, len(contents))
	}
	return nil
}
