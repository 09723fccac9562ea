package main

import (
	"log"
	"os"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/control"
	"github.com/b1naryth1ef/atlas/marker"
	"github.com/b1naryth1ef/atlas/render"
	"github.com/b1naryth1ef/atlas/web"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:        "atlas",
		Description: "render control plane for tiled voxel-world maps",
		Version:     atlas.Version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the render daemon with an interactive console",
				Action: commandServe,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "config.hcl",
					},
				},
			},
			{
				Name:      "render",
				Usage:     "render a world or map once and exit",
				Action:    commandRender,
				ArgsUsage: "<world|map> [<x> <z> <radius>]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "config.hcl",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "invalidate existing render state first",
						Value: false,
					},
				},
			},
			{
				Name:      "purge",
				Usage:     "delete rendered map data, then re-render if still configured",
				Action:    commandPurge,
				ArgsUsage: "<map>",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Usage: "path to the configuration file",
						Value: "config.hcl",
					},
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// runtime bundles everything a running daemon or one-shot invocation needs.
type runtime struct {
	config   *atlas.Config
	registry *atlas.Registry
	manager  *render.Manager
	commands *control.Commands
	runner   *control.Runner
	markers  marker.Store
}

func setup(configPath string) (*runtime, error) {
	config, err := atlas.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	registry, err := atlas.LoadRegistry(config)
	if err != nil {
		return nil, err
	}

	var markers marker.Store
	if config.MarkerPath != "" {
		markers, err = marker.OpenBolt(config.MarkerPath)
		if err != nil {
			return nil, err
		}
	}

	manager := render.NewManager()
	runner := control.NewRunner()
	controller := control.NewController(registry, manager, render.NewFlatRenderer(), config.DataPath)
	commands := control.NewCommands(registry, controller, manager, markers, runner, config.Concurrency)
	commands.ConfigPath = configPath

	return &runtime{
		config:   config,
		registry: registry,
		manager:  manager,
		commands: commands,
		runner:   runner,
		markers:  markers,
	}, nil
}

func (rt *runtime) shutdown() {
	rt.runner.Wait()
	rt.manager.Stop()
	if rt.markers != nil {
		rt.markers.Close()
	}
}

func commandServe(ctx *cli.Context) error {
	rt, err := setup(ctx.Path("config"))
	if err != nil {
		return err
	}
	defer rt.shutdown()

	rt.manager.Start(rt.config.Concurrency)

	if rt.config.Web != nil {
		server := web.NewServer(rt.registry, rt.commands.Controller(), rt.markers, rt.config.DataPath)
		go func() {
			if err := server.ListenAndServe(rt.config.Web.Bind); err != nil {
				log.Printf("[web] server exited: %v", err)
			}
		}()
	}

	runConsole(rt.commands, os.Stdin)
	return nil
}

func commandRender(ctx *cli.Context) error {
	rt, err := setup(ctx.Path("config"))
	if err != nil {
		return err
	}
	defer rt.shutdown()

	args, err := parseUpdateArgs(ctx.Args().Slice())
	if err != nil {
		return err
	}

	rt.manager.Start(rt.config.Concurrency)

	src := &cliSource{}
	if ctx.Bool("force") {
		err = rt.commands.ForceUpdate(src, args)
	} else {
		err = rt.commands.Update(src, args)
	}
	if err != nil {
		return err
	}

	rt.runner.Wait()
	waitIdle(rt.manager)
	return nil
}

func commandPurge(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return cli.Exit("usage: atlas purge <map>", 1)
	}

	rt, err := setup(ctx.Path("config"))
	if err != nil {
		return err
	}
	defer rt.shutdown()

	rt.manager.Start(rt.config.Concurrency)

	err = rt.commands.Purge(&cliSource{}, ctx.Args().First())
	if err != nil {
		return err
	}

	rt.runner.Wait()
	waitIdle(rt.manager)
	return nil
}
