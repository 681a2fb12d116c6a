package main

import (
	"log"
	"os"
	"strconv"

	"github.com/dargueta/ds3fs/dserrors"
	"github.com/dargueta/ds3fs/fs"
	"github.com/dargueta/ds3fs/internal/cliutil"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Print a file's block list and contents by inode number",
		ArgsUsage: "IMAGE_PATH INODE",
		Action:    catFile,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3cat: %s", err.Error())
	}
}

func catFile(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("expected exactly two arguments: IMAGE_PATH INODE", 1)
	}

	inum, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit("INODE must be a non-negative integer", 1)
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

	inode, err := engine.Stat(uint32(inum))
	if err != nil {
		return err
	}
	if inode.Type != fs.TypeRegular {
		return dserrors.ErrInvalidType.WithMessage("not a regular file")
	}

	used := inode.NumBlocksUsed()
	log.Printf("blocks: %v", inode.Direct[:used])

	contents, err := engine.Read(uint32(inum), int(inode.Size))
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(contents)
	return err
}
