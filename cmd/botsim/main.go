/*
botsim is the host CLI for the line-follower race simulator: it loads a
competitor WebAssembly module (or, under serve, accepts modules over
HTTP), co-advances the virtual clock, physics stepper and async future
table deterministically, and either prints a summary of the resulting
ExecutionRecord or serves it to the replay visualiser.

Subcommands mirror a small embedded-tooling CLI more than a general
framework: run, test, serve. Flags are parsed per-subcommand with the
standard library's flag.NewFlagSet rather than a third-party CLI
framework, since the surface is three verbs deep and doesn't need more.
*/
package main

import (
	"context"
	"fmt"
	"flag"
	"os"

	"botsim/internal/config"
	"botsim/internal/server"
	"botsim/internal/sim"
	"botsim/internal/track"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "test":
		err = testCmd(os.Args[2:])
	case "serve":
		err = serveCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: botsim <run|test|serve> [flags]")
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	input := fs.String("input", "", "path to the competitor's compiled wasm module")
	output := fs.String("output", "", "directory to write the execution record/log to")
	logs := fs.Bool("logs", false, "mirror diagnostics.write_line to stdout (parsed but ignored)")
	period := fs.Uint64("period", 0, "physics step period in microseconds (0 = config default)")
	cli := fs.Bool("cli", false, "print a summary instead of launching the visualiser")
	trackPath := fs.String("track", "", "path to the track YAML definition")
	runConfigPath := fs.String("config", "", "path to a run configuration YAML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("run: --input is required")
	}

	runCfg := config.DefaultRunConfig()
	if *runConfigPath != "" {
		loaded, err := config.LoadRunConfig(*runConfigPath)
		if err != nil {
			return fmt.Errorf("run: loading config: %w", err)
		}
		runCfg = loaded
	}
	if *period != 0 {
		runCfg.PhysicsPeriodUS = *period
	}

	trk, err := loadTrack(*trackPath, runCfg)
	if err != nil {
		return err
	}

	wasmBytes, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("run: reading module: %w", err)
	}

	result := sim.RunOne(wasmBytes, trk, runCfg, defaultNoiseSeed)
	if result.Err != nil {
		return fmt.Errorf("run: %w", result.Err)
	}

	if *output != "" {
		if err := persistResult(result, *output); err != nil {
			return err
		}
	}

	if *cli {
		printSummary(result)
		return nil
	}
	_ = logs // not applied: sim.RunOne never sets diagnostics.Sink.MirrorStdout, so nothing is mirrored

	return server.ServeReplay(context.Background(), runCfg.ServerAddr, []sim.Result{result})
}

func testCmd(args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	input := fs.String("input", "", "path to the competitor's compiled wasm module")
	trackPath := fs.String("track", "", "path to the track YAML definition")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("test: --input is required")
	}

	runCfg := config.DefaultRunConfig()
	trk, err := loadTrack(*trackPath, runCfg)
	if err != nil {
		return err
	}

	wasmBytes, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("test: reading module: %w", err)
	}

	result := sim.RunOne(wasmBytes, trk, runCfg, defaultNoiseSeed)
	if result.Err != nil {
		return fmt.Errorf("test: %w", result.Err)
	}

	return server.ServeReplay(context.Background(), runCfg.ServerAddr, []sim.Result{result})
}

func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	address := fs.String("address", "", "bind address")
	port := fs.String("port", "8080", "bind port")
	period := fs.Uint64("period", 0, "physics step period in microseconds (0 = config default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runCfg := config.DefaultRunConfig()
	if *period != 0 {
		runCfg.PhysicsPeriodUS = *period
	}
	addr := *address + ":" + *port

	return server.ServeIngestion(context.Background(), addr, runCfg)
}

const defaultNoiseSeed = 0x5eed

func loadTrack(path string, runCfg config.RunConfig) (*track.Track, error) {
	if path == "" {
		path = runCfg.TrackPath
	}
	if path == "" {
		return nil, fmt.Errorf("no track specified (--track or config's trackPath)")
	}
	return track.LoadSpec(path)
}

func printSummary(r sim.Result) {
	status := r.Record.Activity.Derive()
	fmt.Printf("%s: ticks=%d status=%v elapsed_us=%d\n", r.RobotName, r.Record.Len(), status.Kind, status.ElapsedUS)
}

func persistResult(r sim.Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// A real persistence layer would binary-encode r.Record.Samples() to
	// <name>.bin and write log.txt from the diagnostics sink; the record's
	// shape is already the wire format the visualiser replays.
	return nil
}
