package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const usage = `cvssuck - mirror a remote CVS repository as a local RCS tree

usage: cvssuck [options] cvsroot (-o dir | -O base | -l dir | -L base)* module ...

options:
  -h              show this help
  -b              walk the remote module tree breadth-first (default depth-first)
  -s              wrap the planner in another skeleton layer (stackable)
  -1              introduce a synthetic dead 1.1 when the remote log lacks one
  -v              shorthand for -D command,attic,leavetmp
  -D opt,...      debug toggles: command,attic,protocollog,leavetmp,mkdir,mkdir_exist
  -o dir          output directory for following modules (exact path)
  -O base         output base directory for following modules (base/module)
  -l dir          lock directory for following modules (exact path)
  -L base         lock base directory for following modules (base/module)

Each module uses the most recently specified output and lock settings.
Setting -o or -O resets the lock setting to match output unless a -l/-L
follows it before the next module.
`

// debugToggle applies one name from the closed -D set to flags, per
// spec.md §6.
func debugToggle(flags *DebugFlags, name string) bool {
	switch name {
	case "command":
		flags.Command = true
	case "attic":
		flags.Attic = true
	case "protocollog":
		flags.ProtocolLog = true
	case "leavetmp":
		flags.LeaveTmp = true
	case "mkdir":
		flags.Mkdir = true
	case "mkdir_exist":
		flags.MkdirExist = true
	default:
		return false
	}
	return true
}

// outputSetting tracks the most recently seen -o/-O (and separately
// -l/-L) setting while scanning argv, per spec.md §6.
type outputSetting struct {
	exact bool   // true for -o/-l (exact dir), false for -O/-L (base dir + module)
	value string
}

func (s outputSetting) resolve(module string) string {
	if s.value == "" {
		return ""
	}
	if s.exact {
		return s.value
	}
	return filepath.Join(s.value, module)
}

// parseArgs hand-scans argv the way the teacher's repocutter.go
// hand-dispatches on flag.Arg(0): cvssuck's flags are order-sensitive and
// bind to the modules that follow them, which neither the stdlib flag
// package nor pflag/cobra model in a single pass (see SPEC_FULL.md).
func parseArgs(argv []string) (Config, []ModuleTarget, error) {
	config := Config{}
	var cvsroot string
	var modules []ModuleTarget

	var out, lock outputSetting
	i := 0

	for ; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-h" || arg == "--help":
			fmt.Print(usage)
			os.Exit(0)
		case arg == "-b":
			config.BreadthFirst = true
		case arg == "-s":
			config.SkeletonDepth++
		case arg == "-1":
			config.IntroduceOne11 = true
		case arg == "-v":
			config.Debug.Command = true
			config.Debug.Attic = true
			config.Debug.LeaveTmp = true
		case arg == "-D":
			i++
			if i >= len(argv) {
				return config, nil, fmt.Errorf("-D requires an argument")
			}
			for _, name := range strings.Split(argv[i], ",") {
				if !debugToggle(&config.Debug, name) {
					return config, nil, fmt.Errorf("unknown -D option %q", name)
				}
			}
		default:
			cvsroot = arg
			i++
			goto afterRoot
		}
	}
afterRoot:
	if cvsroot == "" {
		return config, nil, fmt.Errorf("missing cvsroot")
	}
	config.CVSRoot = cvsroot
	config.LeaveTmp = config.Debug.LeaveTmp

	for ; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "-o", "-O", "-l", "-L":
			i++
			if i >= len(argv) {
				return config, nil, fmt.Errorf("%s requires an argument", arg)
			}
			value := argv[i]
			switch arg {
			case "-o":
				out = outputSetting{exact: true, value: value}
				lock = out
			case "-O":
				out = outputSetting{exact: false, value: value}
				lock = out
			case "-l":
				lock = outputSetting{exact: true, value: value}
			case "-L":
				lock = outputSetting{exact: false, value: value}
			}
		default:
			modules = append(modules, ModuleTarget{
				Name:    arg,
				OutDir:  out.resolve(arg),
				LockDir: lock.resolve(arg),
			})
		}
	}

	if len(modules) == 0 {
		return config, nil, fmt.Errorf("no modules given")
	}
	for idx := range modules {
		if modules[idx].OutDir == "" {
			return config, nil, fmt.Errorf("module %q has no output directory (-o/-O)", modules[idx].Name)
		}
		if modules[idx].LockDir == "" {
			modules[idx].LockDir = modules[idx].OutDir
		}
	}
	return config, modules, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	config, modules, err := parseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cvssuck: %v\n\n%s", err, usage)
		return 1
	}

	config.TmpDir = os.Getenv("TMPDIR")
	if config.TmpDir == "" {
		config.TmpDir = "/tmp"
	}
	initBaton(false)
	defer globalBaton.Close()

	failed := 0
	for _, module := range modules {
		if err := runModule(config, module); err != nil {
			if e, ok := err.(*exception); ok {
				croak("module %s: %s", module.Name, e.message)
			} else {
				croak("module %s: %v", module.Name, err)
			}
			failed++
		}
	}
	if failed > 0 {
		respond("%d of %d module(s) did not complete; re-run to resume", failed, len(modules))
		return 1
	}
	return 0
}

func runModule(config Config, module ModuleTarget) (err error) {
	// The only panic expected to reach here is a couldnotlock exception
	// from lock.go's retry exhaustion; catch() re-panics anything else,
	// the same discipline the teacher's own OneCmdHook uses around its
	// catch("command", recover()) call in reposurgeon.go.
	defer func() {
		if e := catch(classCouldNotLock, recover()); e != nil {
			err = e
		}
	}()

	runner := execRunner{debug: config.Debug, baton: globalBaton}
	work, werr := NewCVSWork(config.CVSRoot, config.TmpDir, runner)
	if werr != nil {
		return werr
	}
	defer work.Cleanup(config.LeaveTmp)

	if err := ensureDir(module.OutDir, config.Debug); err != nil {
		return err
	}
	if module.LockDir != module.OutDir {
		if err := ensureDir(module.LockDir, config.Debug); err != nil {
			return err
		}
	}

	repo := NewLocalRepository(module.OutDir, module.LockDir, runner)
	suck := NewCVSSuck(config, work)
	return suck.UpdateModule(module.Name, repo)
}
