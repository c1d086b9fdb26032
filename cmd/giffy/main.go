// Command giffy decodes a GIF file and writes each composed frame as a PNG
// image into an output directory.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/darshanparajuli/giffy"
)

func main() {
	log.SetFlags(0)

	strict := flag.Bool("strict", false, "reject frames with inconsistent pixel counts")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <GIF file> <output folder>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	input, outDir := flag.Arg(0), flag.Arg(1)

	f, err := os.Open(input)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var opts []giffy.Option
	if *strict {
		opts = append(opts, giffy.WithStrict())
	}
	img, err := giffy.Decode(f, opts...)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Frame count: %d", len(img.Frames))

	base := filepath.Base(input)
	for i, canvas := range img.RenderFrames() {
		name := fmt.Sprintf("%s-frame-%d.png", base, i+1)
		path := filepath.Join(outDir, name)
		log.Printf("Writing frame #%d to %q", i+1, name)
		if err := writePNG(path, canvas); err != nil {
			log.Fatal(err)
		}
	}
}

func writePNG(path string, img *image.NRGBA) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
