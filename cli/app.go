// Package cli contains the bodymeasure command line actions.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	previewFlagOut   = "out"
	previewFlagScale = "scale"

	configFlagSchema = "schema"
)

var app = &cli.App{
	Name:            "bodymeasure",
	Usage:           "estimate body height and width from depth sensor frames",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "measure",
			Usage:     "measure every frame of a capture directory and print a table",
			ArgsUsage: "<capture dir>",
			Action:    MeasureAction,
		},
		{
			Name:      "watch",
			Usage:     "measure frames as they are written into a directory",
			ArgsUsage: "<dir>",
			Action:    WatchAction,
		},
		{
			Name:      "preview",
			Usage:     "write depth and body index preview images for one frame",
			ArgsUsage: "<frame stem>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  previewFlagOut,
					Value: ".",
					Usage: "directory to write the PNG files to",
				},
				&cli.IntFlag{
					Name:  previewFlagScale,
					Value: 1,
					Usage: "enlarge every image by this whole factor",
				},
			},
			Action: PreviewAction,
		},
		{
			Name:  "config",
			Usage: "print the effective configuration",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  configFlagSchema,
					Usage: "print the JSON schema of the config file instead",
				},
			},
			Action: PrintConfigAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
