package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/control"
	"github.com/b1naryth1ef/atlas/render"
)

// cliSource is the command source for console and one-shot invocations: no
// location, full permissions, output to the process log.
type cliSource struct{}

func (s *cliSource) World() *atlas.World {
	return nil
}

func (s *cliSource) Position() (control.Position, bool) {
	return control.Position{}, false
}

func (s *cliSource) SendMessage(msg string) {
	log.Printf("[console] %s", msg)
}

func (s *cliSource) HasPermission(perm string) bool {
	return true
}

func parseFloat(token string) (*float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate %q", token)
	}
	return &v, nil
}

// parseUpdateArgs parses the update command grammar:
//
//	update
//	update <radius>
//	update <x> <z> <radius>
//	update <world|map>
//	update <world|map> <radius>
//	update <world|map> <x> <z> <radius>
func parseUpdateArgs(tokens []string) (control.UpdateArgs, error) {
	args := control.UpdateArgs{Radius: control.RadiusUnset}

	// A leading token that is not numeric is the target.
	if len(tokens) > 0 {
		if _, err := strconv.ParseFloat(tokens[0], 64); err != nil {
			args.Target = tokens[0]
			tokens = tokens[1:]
		}
	}

	switch len(tokens) {
	case 0:
		return args, nil
	case 1:
		radius, err := strconv.Atoi(tokens[0])
		if err != nil {
			return args, fmt.Errorf("invalid radius %q", tokens[0])
		}
		args.Radius = radius
		return args, nil
	case 3:
		x, err := parseFloat(tokens[0])
		if err != nil {
			return args, err
		}
		z, err := parseFloat(tokens[1])
		if err != nil {
			return args, err
		}
		radius, err := strconv.Atoi(tokens[2])
		if err != nil {
			return args, fmt.Errorf("invalid radius %q", tokens[2])
		}
		args.X = x
		args.Z = z
		args.Radius = radius
		return args, nil
	default:
		return args, fmt.Errorf("expected [world|map] [x z] <radius>")
	}
}

const consoleHelp = `commands:
  status                                  show pool state and queued tasks
  worlds                                  list loaded worlds
  maps                                    list configured maps
  update [world|map] [x z] [radius]       schedule a render
  force-update [world|map] [x z] [radius] invalidate state, then render
  purge <map>                             delete rendered data, re-render
  cancel [ref]                            cancel one task, or all tasks
  start / stop                            control the render workers
  marker create <id> <map> <label> [x y z]
  marker remove <id>
  debug [world] [x z]                     inspect the region file at a position
  reload                                  re-read the configuration
  version
  exit`

// runConsole reads operator commands line by line until EOF or exit. The
// permission gate runs here, before anything is dispatched.
func runConsole(commands *control.Commands, in io.Reader) {
	src := &cliSource{}
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "exit" || fields[0] == "quit" {
			return
		}

		err := dispatch(commands, src, fields[0], fields[1:])
		if err != nil {
			src.SendMessage(err.Error())
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[console] input error: %v", err)
	}
}

func dispatch(commands *control.Commands, src control.Source, name string, args []string) error {
	perm, ok := consolePermissions[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try 'help'", name)
	}
	if !src.HasPermission(perm) {
		return fmt.Errorf("you don't have permission to use %q", name)
	}

	switch name {
	case "help":
		src.SendMessage(consoleHelp)
		return nil
	case "status":
		return commands.Status(src)
	case "worlds":
		return commands.Worlds(src)
	case "maps":
		return commands.Maps(src)
	case "update", "force-update":
		parsed, err := parseUpdateArgs(args)
		if err != nil {
			return err
		}
		if name == "force-update" {
			return commands.ForceUpdate(src, parsed)
		}
		return commands.Update(src, parsed)
	case "purge":
		if len(args) != 1 {
			return fmt.Errorf("expected: purge <map>")
		}
		return commands.Purge(src, args[0])
	case "cancel":
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		return commands.Cancel(src, ref)
	case "start":
		return commands.Start(src)
	case "stop":
		return commands.Stop(src)
	case "marker":
		return dispatchMarker(commands, src, args)
	case "debug":
		return dispatchDebug(commands, src, args)
	case "reload":
		return commands.Reload(src)
	case "version":
		return commands.Version(src)
	}

	return fmt.Errorf("unknown command %q, try 'help'", name)
}

var consolePermissions = map[string]string{
	"help":         control.PermStatus,
	"status":       control.PermStatus,
	"worlds":       control.PermStatus,
	"maps":         control.PermStatus,
	"update":       control.PermUpdate,
	"force-update": control.PermForceUpdate,
	"purge":        control.PermPurge,
	"cancel":       control.PermCancel,
	"start":        control.PermStart,
	"stop":         control.PermStop,
	"marker":       control.PermMarker,
	"debug":        control.PermDebug,
	"reload":       control.PermReload,
	"version":      control.PermStatus,
}

func dispatchMarker(commands *control.Commands, src control.Source, args []string) error {
	if len(args) >= 2 && args[0] == "remove" {
		return commands.RemoveMarker(src, args[1])
	}

	if len(args) >= 4 && args[0] == "create" {
		id, mapID, label := args[1], args[2], args[3]
		rest := args[4:]

		var x, y, z *float64
		if len(rest) == 3 {
			var err error
			if x, err = parseFloat(rest[0]); err != nil {
				return err
			}
			if y, err = parseFloat(rest[1]); err != nil {
				return err
			}
			if z, err = parseFloat(rest[2]); err != nil {
				return err
			}
		} else if len(rest) != 0 {
			return fmt.Errorf("expected: marker create <id> <map> <label> [x y z]")
		}

		return commands.CreateMarker(src, id, mapID, label, x, y, z)
	}

	return fmt.Errorf("expected: marker create <id> <map> <label> [x y z] | marker remove <id>")
}

func dispatchDebug(commands *control.Commands, src control.Source, args []string) error {
	target := ""
	rest := args

	if len(rest) > 0 {
		if _, err := strconv.ParseFloat(rest[0], 64); err != nil {
			target = rest[0]
			rest = rest[1:]
		}
	}

	var x, z *float64
	if len(rest) == 2 {
		var err error
		if x, err = parseFloat(rest[0]); err != nil {
			return err
		}
		if z, err = parseFloat(rest[1]); err != nil {
			return err
		}
	} else if len(rest) != 0 {
		return fmt.Errorf("expected: debug [world] [x z]")
	}

	return commands.DebugRegion(src, target, x, z)
}

// waitIdle polls until the manager has no tracked tasks left.
func waitIdle(manager *render.Manager) {
	for len(manager.Tasks()) > 0 {
		time.Sleep(100 * time.Millisecond)
	}
}
