package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/glizzus/opus-bridge/internal/opus"
)

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

var inFlag = &cli.StringFlag{
	Name:    "in",
	Aliases: []string{"i"},
	Usage:   "Input file, or - for stdin",
	Value:   "-",
}

func main() {
	app := &cli.App{
		Name:        "opus-bridge-cli",
		Description: "Development tools for preparing and checking opus-bridge frame streams",
		Commands: []*cli.Command{
			{
				Name:  "ogg2frames",
				Usage: "Convert an Ogg Opus file into a length-prefixed frame stream",
				Flags: []cli.Flag{
					inFlag,
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file, or - for stdout",
						Value:   "-",
					},
					&cli.BoolFlag{
						Name:  "sentinel",
						Usage: "Terminate the stream with a zero-length frame",
					},
				},
				Action: func(c *cli.Context) error {
					in, err := openInput(c.String("in"))
					if err != nil {
						return cli.Exit("Failed to open input: "+err.Error(), 1)
					}
					defer in.Close()

					out, err := createOutput(c.String("out"))
					if err != nil {
						return cli.Exit("Failed to create output: "+err.Error(), 1)
					}
					defer out.Close()

					w := opus.NewFrameWriter(out)
					stats, err := opus.CopyFrames(w, opus.NewOggReader(in))
					if err != nil {
						return cli.Exit("Failed to convert: "+err.Error(), 1)
					}
					if c.Bool("sentinel") {
						if err := w.WriteEnd(); err != nil {
							return cli.Exit("Failed to write end of stream: "+err.Error(), 1)
						}
					}
					log.Printf("Wrote %d frames (%d bytes), input ended: %s", stats.Frames, stats.Bytes, stats.End)
					return nil
				},
			},
			{
				Name:  "inspect",
				Usage: "Summarise a length-prefixed frame stream",
				Flags: []cli.Flag{inFlag},
				Action: func(c *cli.Context) error {
					in, err := openInput(c.String("in"))
					if err != nil {
						return cli.Exit("Failed to open input: "+err.Error(), 1)
					}
					defer in.Close()

					stats, err := opus.CopyFrames(nil, opus.NewFrameReader(in))
					if err != nil {
						return cli.Exit("Failed to read frames: "+err.Error(), 1)
					}
					fmt.Printf("frames:  %d\n", stats.Frames)
					fmt.Printf("bytes:   %d\n", stats.Bytes)
					if stats.Frames > 0 {
						fmt.Printf("min:     %d\n", stats.Min)
						fmt.Printf("max:     %d\n", stats.Max)
						fmt.Printf("mean:    %.1f\n", float64(stats.Bytes)/float64(stats.Frames))
					}
					fmt.Printf("end:     %s\n", stats.End)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
