package main

import (
	"log"
	"os"

	"github.com/dargueta/ds3fs/fs"
	"github.com/dargueta/ds3fs/internal/cliutil"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "Report inode/data block usage and check consistency for a ds3 disk image",
		ArgsUsage: "IMAGE_PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "scrub", Usage: "walk the whole image and report every invariant violation found"},
		},
		Action: reportUsage,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3bits: %s", err.Error())
	}
}

func reportUsage(c *cli.Context) error {
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

	if c.Bool("scrub") {
		if err := fs.Scrub(engine); err != nil {
			return err
		}
		log.Println("scrub: no invariant violations found")
		return nil
	}

	blk, err := dev.ReadBlock(0)
	if err != nil {
		return err
	}
	sb, err := fs.DecodeSuperblock(blk[:])
	if err != nil {
		return err
	}
	log.Printf("superblock: %+v", sb)

	usage, err := engine.Usage()
	if err != nil {
		return err
	}
	log.Printf("inodes: %d/%d used", usage.UsedInodes, usage.TotalInodes)
	log.Printf("data blocks: %d/%d used", usage.UsedBlocks, usage.TotalBlocks)
	return nil
}
