// Package main provides the CLI entry point for vidgif.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidgif/pkg/adapters/ffmpegdec"
	"github.com/user/vidgif/pkg/adapters/ffmpeggif"
	"github.com/user/vidgif/pkg/adapters/gifenc"
	"github.com/user/vidgif/pkg/adapters/logger"
	"github.com/user/vidgif/pkg/adapters/mpvaudio"
	"github.com/user/vidgif/pkg/adapters/osfilesystem"
	"github.com/user/vidgif/pkg/config"
	"github.com/user/vidgif/pkg/export"
	"github.com/user/vidgif/pkg/player"
	"github.com/user/vidgif/pkg/ports"
	"github.com/user/vidgif/pkg/session"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "vidgif",
		Usage:   l10n.T("Play video files and clip ranges to animated GIF"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   l10n.T("Log level (debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"Q"},
				Usage:   l10n.T("Suppress all log output"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("Configuration YAML file path"),
			},
			&cli.StringFlag{
				Name:  "ffmpeg-path",
				Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then system default)"),
			},
			&cli.StringFlag{
				Name:  "ffprobe-path",
				Usage: l10n.T("Path to ffprobe executable (falls back to FFPROBE_PATH env, then system default)"),
			},
		},
		Commands: []*cli.Command{
			probeCommand(),
			exportCommand(),
			previewCommand(),
			playCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the logger from the global flags.
func newLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
}

// loadConfig overlays the optional config file on the defaults and
// applies the external tool paths.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}
	if p := c.String("ffmpeg-path"); p != "" {
		cfg.FFmpegPath = p
	}
	if p := c.String("ffprobe-path"); p != "" {
		cfg.FFprobePath = p
	}
	ffmpegdec.SetFFmpegPath(cfg.FFmpegPath)
	ffmpegdec.SetFFprobePath(cfg.FFprobePath)
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show container metadata for a video file"),
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New(l10n.T("a video file argument is required"))
			}
			if _, err := loadConfig(c); err != nil {
				return err
			}

			info, err := ffmpegdec.Probe(c.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s\n", l10n.T("File"), info.Path)
			fmt.Printf("%s: %dx%d\n", l10n.T("Dimensions"), info.Width, info.Height)
			fmt.Printf("%s: %.3f fps\n", l10n.T("Frame Rate"), info.FPS)
			fmt.Printf("%s: %d\n", l10n.T("Frame Count"), info.TotalFrames)
			fmt.Printf("%s: %s\n", l10n.T("Duration"), (time.Duration(info.DurationMs()) * time.Millisecond).String())
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     l10n.T("Clip a time range to an animated GIF"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:     "start",
				Aliases:  []string{"s"},
				Required: true,
				Usage:    l10n.T("Clip start in seconds"),
			},
			&cli.Float64Flag{
				Name:     "end",
				Aliases:  []string{"e"},
				Required: true,
				Usage:    l10n.T("Clip end in seconds"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   l10n.T("Output GIF file path (default: export_<start>s-<end>s.gif)"),
			},
			&cli.IntFlag{
				Name:  "fps",
				Usage: l10n.T("Output frame rate (default: 10)"),
			},
			&cli.StringFlag{
				Name:  "size",
				Usage: l10n.T("Size preset (small, medium, large, xlarge)"),
			},
			&cli.StringFlag{
				Name:    "quality",
				Aliases: []string{"q"},
				Usage:   l10n.T("Quality preset (low, medium, high)"),
			},
			&cli.BoolFlag{
				Name:  "no-direct",
				Usage: l10n.T("Skip the ffmpeg palette pipeline and always extract frames"),
			},
		},
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New(l10n.T("a video file argument is required"))
	}
	log := newLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.IsSet("fps") {
		cfg.FPS = c.Int("fps")
	}
	if p := c.String("size"); p != "" {
		if err := cfg.ApplySizePreset(config.SizePreset(p)); err != nil {
			return err
		}
	}
	if p := c.String("quality"); p != "" {
		if err := cfg.ApplyQualityPreset(config.QualityPreset(p)); err != nil {
			return err
		}
	}

	start, end := c.Float64("start"), c.Float64("end")
	output := c.String("output")
	if output == "" {
		output = export.SuggestedName(start, end)
	}

	job := cfg.ToJob(c.Args().First(), output, start, end)
	if err := job.Validate(); err != nil {
		return err
	}

	if warning := export.DurationWarning(job.DurationSec()); warning != "" {
		log.Warn(warning)
	}
	estimate := export.EstimateSizeBytes(job)
	log.Info(l10n.F("Estimated output size: about %s", export.FormatFileSize(estimate)))

	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	opts := export.Options{
		NewDecoder: func() ports.FrameDecoder { return ffmpegdec.New() },
		NewEncoder: func() ports.AnimationEncoder { return gifenc.New() },
		FS:         fs,
	}
	if !c.Bool("no-direct") {
		opts.Direct = ffmpeggif.New(fs)
	}

	pipeline := export.NewPipeline(opts, log)
	log.Info(l10n.F("Exporting %s (%.1f-%.1f s) to %s", job.SourcePath, start, end, output))

	lastPercent := -1
	for ev := range pipeline.Run(ctx, job) {
		if ev.Err != nil {
			return ev.Err
		}
		if ev.Percent != lastPercent {
			lastPercent = ev.Percent
			log.Debug("progress %d%%", ev.Percent)
		}
		if ev.Done {
			log.Info(l10n.F("Output saved to %s", ev.OutputPath))
		}
	}
	return ctx.Err()
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     l10n.T("Extract a single frame as a PNG image"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "time",
				Aliases: []string{"t"},
				Usage:   l10n.T("Position in seconds"),
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    l10n.T("Output PNG file path"),
			},
			&cli.IntFlag{
				Name:  "max-width",
				Value: 1280,
				Usage: l10n.T("Maximum preview width"),
			},
			&cli.IntFlag{
				Name:  "max-height",
				Value: 720,
				Usage: l10n.T("Maximum preview height"),
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New(l10n.T("a video file argument is required"))
			}
			log := newLogger(c)
			if _, err := loadConfig(c); err != nil {
				return err
			}

			img, err := export.FramePreview(
				func() ports.FrameDecoder { return ffmpegdec.New() },
				c.Args().First(), c.Float64("time"),
				c.Int("max-width"), c.Int("max-height"),
			)
			if err != nil {
				return err
			}

			out, err := os.Create(c.String("output"))
			if err != nil {
				return err
			}
			defer out.Close()
			if err := png.Encode(out, img); err != nil {
				return err
			}
			log.Info(l10n.F("Output saved to %s", c.String("output")))
			return nil
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     l10n.T("Play a video file once, with audio when mpv is available"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-audio",
				Usage: l10n.T("Disable audio playback"),
			},
			&cli.IntFlag{
				Name:  "volume",
				Value: 100,
				Usage: l10n.T("Audio volume (0-100)"),
			},
		},
		Action: runPlay,
	}
}

func runPlay(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New(l10n.T("a video file argument is required"))
	}
	log := newLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var audio ports.AudioOutput
	if cfg.AudioEnabled && !c.Bool("no-audio") {
		if mpvaudio.IsAvailable() {
			audio = mpvaudio.New(log)
		} else {
			log.Warn(l10n.T("mpv not found, continuing without sound"))
		}
	}

	fs := osfilesystem.New()
	sess := session.New(session.Config{
		Logger:     log,
		NewDecoder: func() ports.FrameDecoder { return ffmpegdec.New() },
		NewEncoder: func() ports.AnimationEncoder { return gifenc.New() },
		Audio:      audio,
		Direct:     ffmpeggif.New(fs),
		FS:         fs,
		SeekDelay:  time.Duration(cfg.SeekDelayMs) * time.Millisecond,
	})
	defer sess.Close()

	if err := sess.Load(c.Args().First()); err != nil {
		return err
	}
	sess.SetVolume(c.Int("volume"))

	ctx, cancel := signalContext(log)
	defer cancel()

	if err := sess.Play(); err != nil {
		return err
	}

	var lastSecond int64 = -1
	for {
		select {
		case <-ctx.Done():
			return sess.Stop()
		case ev, ok := <-sess.Events():
			if !ok {
				return nil
			}
			switch ev.Kind {
			case player.EventPosition:
				if sec := ev.PositionMs / 1000; sec != lastSecond {
					lastSecond = sec
					log.Debug("position %ds", sec)
				}
			case player.EventFinished:
				log.Info(l10n.T("Playback finished"))
				return nil
			case player.EventError:
				return ev.Err
			}
		}
	}
}
