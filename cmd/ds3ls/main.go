package main

import (
	"log"
	"os"
	"sort"

	"github.com/dargueta/ds3fs/fs"
	"github.com/dargueta/ds3fs/internal/cliutil"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage:     "List a directory inside a ds3 disk image",
		ArgsUsage: "IMAGE_PATH PATH",
		Action:    listDirectory,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("ds3ls: %s", err.Error())
	}
}

func listDirectory(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("expected exactly two arguments: IMAGE_PATH PATH", 1)
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

	inum, err := engine.LookupPath(c.Args().Get(1))
	if err != nil {
		return err
	}

	entries, err := engine.ListDirectory(inum)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for _, entry := range entries {
		child, err := engine.Stat(entry.Inum)
		if err != nil {
			return err
		}
		kind := "-"
		if child.Type == fs.TypeDirectory {
			kind = "d"
		}
		log.Printf("%s %8d  %s", kind, child.Size, entry.Name)
	}
	return nil
}
