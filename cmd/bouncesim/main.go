package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-bounce/internal/app"
	"github.com/coreman2200/funtimes-bounce/internal/audio"
	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/driver/fake"
	"github.com/coreman2200/funtimes-bounce/internal/store"
)

func main() {
	var (
		moviePath = flag.String("movie", "", "movie JSON file or library id")
		dbPath    = flag.String("db", "", "movie library database")
		doImport  = flag.Bool("import", false, "save -movie into -db and exit")
		rate      = flag.Float64("rate", 1, "playback rate")
		every     = flag.Int("every", 1, "print every Nth frame (frames with cues always print)")
		realtime  = flag.Bool("realtime", false, "pace frames with a wall-clock ticker")
		ping      = flag.String("ping", "", "wav played when a target is hit")
		verbose   = flag.Bool("v", false, "debug logging")
		fps       = 60 * physic.Hertz
	)
	flag.Var(&fps, "fps", "simulation frame rate, e.g. 30Hz")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *moviePath == "" {
		log.Fatal().Msg("Provide -movie path to a movie JSON or a library id")
	}
	if *rate <= 0 {
		log.Fatal().Float64("rate", *rate).Msg("-rate must be positive")
	}

	var lib *store.Store
	if *dbPath != "" {
		s, err := store.Open(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open library")
		}
		defer s.Close()
		lib = s
	}

	m, err := app.OpenMovie(*moviePath, lib)
	if err != nil {
		log.Fatal().Err(err).Msg("load movie")
	}

	if *doImport {
		if lib == nil {
			log.Fatal().Msg("-import needs -db")
		}
		id, err := lib.Save(m)
		if err != nil {
			log.Fatal().Err(err).Msg("import")
		}
		fmt.Println(id)
		return
	}

	drv := &fake.Driver{Out: os.Stdout, Every: *every}
	core, err := app.NewCore(app.Options{
		Driver:    drv,
		FrameRate: fps,
		Diag: func(d diag.Diagnostic) {
			log.Info().Str("code", d.Code).Msg(d.Summary)
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("core")
	}
	core.Load(m)
	if *ping != "" {
		buf, err := audio.Load(*ping)
		if err != nil {
			log.Warn().Err(err).Msg("ping unavailable; targets will be silent")
		} else {
			core.BindPing(buf)
		}
	}
	core.Play(*rate)

	dt := fps.Period()
	var ticker *time.Ticker
	if *realtime {
		ticker = time.NewTicker(dt)
		defer ticker.Stop()
	}
	for frame := 0; !core.Ended(); frame++ {
		if ticker != nil {
			<-ticker.C
		}
		ms := float64((time.Duration(frame) * dt).Microseconds()) / 1000.0
		if err := core.Tick(ms); err != nil {
			log.Fatal().Err(err).Msg("render")
		}
	}
	fmt.Printf("Done at t=%.3f after %d frames\n", core.Clock.Offset(), drv.Count)
}
