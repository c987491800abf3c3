/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/extcc/extcc/extcc/builder"
	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/extcc/toolchain"
	"github.com/extcc/extcc/util"
)

var ExtccVersion = "0.9.0"

var extccVerbosity int
var extccLogLevel string
var extccLogFile string
var extccNumJobs int

var ccName = "gcc"
var targetOsName string
var targetCpuName string
var optMode string
var outFile string
var nimcacheDir string
var libPath string
var compileOnly bool
var noLinking bool
var forceBuild bool
var listCmds bool
var genScript bool
var genMapping bool
var genStaticLib bool
var genDynLib bool
var genGuiApp bool
var cDebug bool
var hotCodeReload bool
var passC []string
var passL []string
var defineVars []string

func extccUsage(cmd *cobra.Command, err error) {
	if err != nil {
		if sErr, ok := err.(*util.CcError); ok {
			log.Debugf("%s", sErr.StackTrace)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	}

	if cmd != nil {
		cmd.Help()
	}
	os.Exit(1)
}

// configFromFlags translates the command line into the driver's Config.
func configFromFlags(cmd *cobra.Command, args []string) (*config.Config, error) {
	conf := config.New()

	conf.Verbosity = extccVerbosity
	conf.NumProcessors = extccNumJobs
	conf.CommandLine = strings.Join(os.Args[1:], " ")

	if targetOsName != "" {
		id := platform.OsFromName(targetOsName)
		if id == platform.OsNone {
			return nil, util.FmtCcError("unknown target OS: '%s'",
				targetOsName)
		}
		conf.TargetOS = id
	}
	if targetCpuName != "" {
		id := platform.CpuFromName(targetCpuName)
		if id == platform.CpuNone {
			return nil, util.FmtCcError("unknown target CPU: '%s'",
				targetCpuName)
		}
		conf.TargetCPU = id
	}

	if err := toolchain.SetCC(conf, ccName); err != nil {
		return nil, err
	}

	switch optMode {
	case "speed":
		conf.Options |= config.OptOptimizeSpeed
	case "size":
		conf.Options |= config.OptOptimizeSize
	case "none", "":
	default:
		return nil, util.FmtCcError("unknown optimization mode: '%s'",
			optMode)
	}

	setOpt := func(flag bool, opt config.GlobalOptions) {
		if flag {
			conf.GlobalOptions |= opt
		}
	}
	setOpt(compileOnly, config.OptCompileOnly)
	setOpt(noLinking, config.OptNoLinking)
	setOpt(forceBuild, config.OptForceFullMake)
	setOpt(listCmds, config.OptListCmd)
	setOpt(genScript, config.OptGenScript)
	setOpt(genMapping, config.OptGenMapping)
	setOpt(genStaticLib, config.OptGenStaticLib)
	setOpt(genDynLib, config.OptGenDynLib)
	setOpt(genGuiApp, config.OptGenGuiApp)
	setOpt(cDebug, config.OptCDebug)
	setOpt(hotCodeReload, config.OptHotCodeReloading)

	for _, opt := range passC {
		conf.CompileOptionsCmd = append(conf.CompileOptionsCmd, opt)
	}
	for _, opt := range passL {
		conf.LinkOptionsCmd = append(conf.LinkOptionsCmd, opt)
	}
	for _, def := range defineVars {
		pair := strings.SplitN(def, "=", 2)
		if len(pair) != 2 {
			return nil, util.FmtCcError("invalid variable: '%s' "+
				"(expected key=value)", def)
		}
		conf.SetConfigVar(pair[0], pair[1])
	}

	conf.OutFile = outFile
	conf.LibPath = libPath

	wd, err := os.Getwd()
	if err != nil {
		return nil, util.ChildCcError(err)
	}
	conf.ProjectPath = wd

	conf.NimcacheDir = nimcacheDir
	if conf.NimcacheDir == "" {
		conf.NimcacheDir = filepath.Join(wd, "nimcache")
	}
	if err := os.MkdirAll(conf.NimcacheDir, 0755); err != nil {
		return nil, util.ChildCcError(err)
	}

	return conf, nil
}

func buildRunCmd(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		extccUsage(cmd, util.NewCcError(
			"Must specify at least one C source file"))
	}

	conf, err := configFromFlags(cmd, args)
	if err != nil {
		extccUsage(cmd, err)
	}

	first := args[0]
	conf.ProjectName = strings.TrimSuffix(filepath.Base(first),
		filepath.Ext(first))

	for _, arg := range args {
		cname, err := filepath.Abs(arg)
		if err != nil {
			extccUsage(cmd, util.ChildCcError(err))
		}

		nimname := strings.TrimSuffix(filepath.Base(cname),
			filepath.Ext(cname))
		cfile := config.CFile{NimName: nimname, CName: cname}

		// Sources handed to the driver were produced by an earlier run;
		// the footprint oracle decides what actually needs recompiling.
		if err := builder.AddExternalFileToCompile(conf, cfile); err != nil {
			extccUsage(nil, err)
		}
	}

	res, err := builder.CallCCompiler(conf)
	if err != nil {
		extccUsage(nil, err)
	}

	if err := builder.WriteBuildPlan(conf, res); err != nil {
		extccUsage(nil, err)
	}

	if err := builder.WriteMapping(conf, ""); err != nil {
		extccUsage(nil, err)
	}

	util.StatusMessage(util.VERBOSITY_DEFAULT, "Build complete: %s\n",
		conf.AbsOutFile())
}

func replayRunCmd(cmd *cobra.Command, args []string) {
	conf, err := configFromFlags(cmd, args)
	if err != nil {
		extccUsage(cmd, err)
	}

	if len(args) >= 1 {
		plan := args[0]
		conf.NimcacheDir = filepath.Dir(plan)
		conf.ProjectName = strings.TrimSuffix(filepath.Base(plan),
			filepath.Ext(plan))
	}

	if err := builder.RunPlan(conf); err != nil {
		extccUsage(nil, err)
	}

	util.StatusMessage(util.VERBOSITY_DEFAULT, "Replay complete\n")
}

func parseCmds() *cobra.Command {
	extccHelpText := "extcc drives an external C toolchain over a set of " +
		"generated C sources:\nit decides what needs recompiling, runs the " +
		"compiler in parallel, links the\nresult, and records a replayable " +
		"build plan."

	extccCmd := &cobra.Command{
		Use:     "extcc",
		Short:   "extcc is a driver for external C/C++ toolchains",
		Long:    extccHelpText,
		Version: ExtccVersion,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, err := log.ParseLevel(extccLogLevel)
			if err != nil {
				extccUsage(nil, util.FmtCcError("invalid log level: %s",
					extccLogLevel))
			}

			if err := util.Init(logLevel, extccLogFile,
				extccVerbosity); err != nil {

				extccUsage(nil, err)
			}

			util.PrintShellCmds = listCmds
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	extccCmd.PersistentFlags().IntVarP(&extccVerbosity, "verbosity", "v",
		util.VERBOSITY_DEFAULT, "Verbosity (0-3)")
	extccCmd.PersistentFlags().StringVarP(&extccLogLevel, "loglevel", "l",
		"WARN", "Log level")
	extccCmd.PersistentFlags().StringVar(&extccLogFile, "logfile", "",
		"Log to the given file as well as stderr")
	extccCmd.PersistentFlags().IntVarP(&extccNumJobs, "jobs", "j", 0,
		"Number of parallel compiler processes (0 = autodetect)")

	buildCmd := &cobra.Command{
		Use:   "build <file.c> [file.c...]",
		Short: "Compile and link a set of generated C sources",
		Run:   buildRunCmd,
	}
	buildCmd.Flags().StringVar(&ccName, "cc", "gcc", "C compiler to use")
	buildCmd.Flags().StringVar(&targetOsName, "os", "", "Target OS")
	buildCmd.Flags().StringVar(&targetCpuName, "cpu", "", "Target CPU")
	buildCmd.Flags().StringVar(&optMode, "opt", "none",
		"Optimization mode (none|speed|size)")
	buildCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file")
	buildCmd.Flags().StringVar(&nimcacheDir, "nimcache", "",
		"Directory for intermediate artifacts")
	buildCmd.Flags().StringVar(&libPath, "lib", "",
		"Path to the compiler's lib directory")
	buildCmd.Flags().BoolVarP(&compileOnly, "compileonly", "c", false,
		"Synthesize commands without running the compiler or linker")
	buildCmd.Flags().BoolVar(&noLinking, "nolinking", false,
		"Skip the link step entirely")
	buildCmd.Flags().BoolVarP(&forceBuild, "force", "f", false,
		"Recompile everything, ignoring the footprint cache")
	buildCmd.Flags().BoolVar(&listCmds, "listcmd", false,
		"Echo every toolchain command before running it")
	buildCmd.Flags().BoolVar(&genScript, "genscript", false,
		"Generate a standalone build script in the nimcache")
	buildCmd.Flags().BoolVar(&genMapping, "genmapping", false,
		"Write the mapping.txt interface file")
	buildCmd.Flags().BoolVar(&genStaticLib, "staticlib", false,
		"Produce a static library")
	buildCmd.Flags().BoolVar(&genDynLib, "dynlib", false,
		"Produce a shared library")
	buildCmd.Flags().BoolVar(&genGuiApp, "gui", false,
		"Produce a GUI application (Windows targets)")
	buildCmd.Flags().BoolVar(&cDebug, "debug", false,
		"Pass debug flags to the C compiler")
	buildCmd.Flags().BoolVar(&hotCodeReload, "hotcodereload", false,
		"Build for hot code reloading (one DLL per module)")
	buildCmd.Flags().StringArrayVar(&passC, "passc", nil,
		"Extra option passed to every compile")
	buildCmd.Flags().StringArrayVar(&passL, "passl", nil,
		"Extra option passed to the linker")
	buildCmd.Flags().StringArrayVarP(&defineVars, "var", "d", nil,
		"Set a configuration variable (key=value)")

	replayCmd := &cobra.Command{
		Use:   "replay <plan.json>",
		Short: "Re-run the compile and link commands of a recorded plan",
		Run:   replayRunCmd,
	}

	extccCmd.AddCommand(buildCmd)
	extccCmd.AddCommand(replayCmd)

	return extccCmd
}

func main() {
	cmd := parseCmds()
	if err := cmd.Execute(); err != nil {
		extccUsage(nil, util.ChildCcError(err))
	}
}
