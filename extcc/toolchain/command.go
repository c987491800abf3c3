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

package toolchain

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/util"
)

func quoteShell(s string) string {
	return shellquote.Join(s)
}

// NeedsExeExt reports whether executable names must carry an ".exe"
// suffix: always on a Windows host, and in generated scripts meant to run
// on a Windows target.
func NeedsExeExt(conf *config.Config) bool {
	if platform.IsWindowsLike(conf.HostOS) {
		return true
	}
	return conf.GlobalOptions.Has(config.OptGenScript) &&
		platform.IsWindowsLike(conf.TargetOS)
}

func addExeExt(exe string) string {
	if strings.HasSuffix(exe, ".exe") {
		return exe
	}
	return exe + ".exe"
}

// noAbsolutePaths is the script-generation mode: commands must stay
// relocatable, so bare executable names and file basenames are used and
// include directives are suppressed.
func noAbsolutePaths(conf *config.Config) bool {
	return conf.GlobalOptions.Has(config.OptGenScript)
}

// VccPlatform renders the target-platform switch understood by the VCC
// family; other toolchains never bind it into their templates.
func VccPlatform(conf *config.Config) string {
	switch conf.TargetCPU {
	case platform.CpuI386:
		return " --platform:x86"
	case platform.CpuArm:
		return " --platform:arm"
	case platform.CpuAmd64:
		return " --platform:amd64"
	default:
		return ""
	}
}

// compilerExe picks the driver executable for a source file: the C++
// driver when compiling to C++ and the file is not plain C, the C driver
// otherwise.  A toolchain without a suitable driver cannot serve the
// requested target.
func compilerExe(conf *config.Config, d *Descriptor, cname string) (string, error) {
	exe := d.CompilerExe
	if conf.Backend == config.BackendCpp && !strings.HasSuffix(cname, ".c") {
		exe = d.CppCompiler
	}
	if exe == "" {
		return "", util.FmtCcError(
			"the C compiler '%s' cannot be used with the current target", d.Name)
	}

	return exe, nil
}

// ObjFilePath derives the object path for a translation unit: an explicit
// Obj wins; otherwise the object extension is appended to the source path,
// and external sources are redirected into the nimcache.
func ObjFilePath(conf *config.Config, cfile *config.CFile) string {
	if cfile.Obj != "" {
		return cfile.Obj
	}

	d := Get(conf.CCompiler)
	obj := cfile.CName + "." + d.ObjExt
	if cfile.Flags.Has(config.CfileExternal) {
		obj = filepath.Join(conf.NimcacheDir, filepath.Base(obj))
	}

	return obj
}

// changeFileExt swaps the extension of path for ext (no leading dot).
func changeFileExt(path string, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}

// CompileCFileCmd synthesizes the full compile invocation for one
// translation unit.
func CompileCFileCmd(conf *config.Config, cfile *config.CFile,
	isMainFile bool, produceOutput bool) (string, error) {

	d := Get(conf.CCompiler)

	options := CFileSpecificOptions(conf, cfile.NimName, cfile.CName)

	exe := conf.GetConfigVar(d.Name + ".exe")
	if exe == "" {
		var err error
		exe, err = compilerExe(conf, d, cfile.CName)
		if err != nil {
			return "", err
		}
	}
	if NeedsExeExt(conf) {
		exe = addExeExt(exe)
	}

	if (conf.GlobalOptions.Has(config.OptGenDynLib) ||
		(conf.HcrOn() && !isMainFile)) &&
		platform.OS[conf.TargetOS].Props.Has(platform.PropNeedsPIC) {

		config.AddOpt(&options, d.Pic)
	}

	noAbs := noAbsolutePaths(conf)

	var includeCmd, compilePattern string
	if !noAbs {
		includeCmd = d.IncludeCmd + quoteShell(conf.LibPath)
		for _, inc := range conf.CIncludes {
			includeCmd += d.IncludeCmd + quoteShell(inc)
		}
		includeCmd += d.IncludeCmd + quoteShell(conf.ProjectPath)

		compilePattern = filepath.Join(conf.CCompilerPath, exe)
	} else {
		includeCmd = ""
		compilePattern = filepath.Base(exe)
	}

	cf := cfile.CName
	if noAbs {
		cf = filepath.Base(cf)
	}

	objfile := ObjFilePath(conf, cfile)
	if noAbs {
		objfile = filepath.Base(objfile)
	}

	dfile := quoteShell(changeFileExt(objfile, "d"))
	objfileQ := quoteShell(objfile)
	cfQ := quoteShell(cf)

	if conf.GlobalOptions.Has(config.OptProduceAsm) && d.ProduceAsm != "" {
		asmfile := quoteShell(changeFileExt(objfile, "asm"))
		config.AddOpt(&options, Expand(d.ProduceAsm,
			map[string]string{"asmfile": asmfile}))
		if produceOutput {
			util.StatusMessage(util.VERBOSITY_VERBOSE,
				"Produced assembler here: %s\n", asmfile)
		}
	}

	bindings := map[string]string{
		"dfile":       dfile,
		"file":        cfQ,
		"objfile":     objfileQ,
		"options":     options,
		"include":     includeCmd,
		"nim":         quoteShell(conf.PrefixDir),
		"lib":         quoteShell(conf.LibPath),
		"vccplatform": VccPlatform(conf),
	}

	result := quoteShell(Expand(compilePattern, bindings))
	result += " " + Expand(d.CompileTmpl, bindings)

	return result, nil
}

// libNameTmpl is the target's naming scheme for static libraries.
func libNameTmpl(conf *config.Config) string {
	if platform.IsWindowsLike(conf.TargetOS) {
		return "$1.lib"
	}
	return "lib$1.a"
}

// LinkCmd synthesizes the link invocation producing output from the
// space-separated, pre-quoted objfiles string.  isDll selects the
// shared-library flags; gen_static_lib overrides everything and archives
// instead.
func LinkCmd(conf *config.Config, output string, objfiles string,
	isDll bool) (string, error) {

	d := Get(conf.CCompiler)

	if conf.GlobalOptions.Has(config.OptGenStaticLib) {
		if d.BuildLib == "" {
			return "", util.FmtCcError(
				"the C compiler '%s' cannot produce static libraries", d.Name)
		}

		libname := conf.OutFile
		if libname != "" {
			if strings.HasPrefix(libname, "~/") {
				if home, err := os.UserHomeDir(); err == nil {
					libname = filepath.Join(home, libname[2:])
				}
			}
			if !filepath.IsAbs(libname) {
				libname = filepath.Join(conf.ProjectPath, libname)
			}
		} else {
			libname = Expand1(libNameTmpl(conf), conf.ProjectName)
		}

		return Expand(d.BuildLib, map[string]string{
			"libfile":  "\"" + libname + "\"",
			"objfiles": objfiles,
		}), nil
	}

	linkerExe := conf.GetConfigVar(d.Name + ".linkerexe")
	if linkerExe == "" {
		linkerExe = d.LinkerExe
	}
	if linkerExe == "" {
		var err error
		linkerExe, err = compilerExe(conf, d, "")
		if err != nil {
			return "", err
		}
	}
	if NeedsExeExt(conf) {
		linkerExe = addExeExt(linkerExe)
	}

	var linkPattern string
	if noAbsolutePaths(conf) {
		linkPattern = filepath.Base(linkerExe)
	} else {
		linkPattern = filepath.Join(conf.CCompilerPath, linkerExe)
	}

	buildgui := ""
	if conf.GlobalOptions.Has(config.OptGenGuiApp) &&
		platform.IsWindowsLike(conf.TargetOS) {

		buildgui = d.BuildGui
	}

	builddll := ""
	if isDll {
		builddll = d.BuildDll
	}

	exefile := quoteShell(output)
	mapfile := quoteShell(filepath.Join(conf.NimcacheDir,
		changeFileExt(filepath.Base(output), "map")))

	linkOptions := LinkOptions(conf)
	if v := conf.GetConfigVar(d.Name + ".options.linker"); v != "" {
		config.AddOpt(&linkOptions, v)
	}

	linkTmpl := conf.GetConfigVar(d.Name + ".linkTmpl")
	if linkTmpl == "" {
		linkTmpl = d.LinkTmpl
	}

	bindings := map[string]string{
		"builddll":    builddll,
		"mapfile":     mapfile,
		"buildgui":    buildgui,
		"options":     linkOptions,
		"objfiles":    objfiles,
		"exefile":     exefile,
		"nim":         quoteShell(conf.PrefixDir),
		"lib":         quoteShell(conf.LibPath),
		"vccplatform": VccPlatform(conf),
	}

	result := quoteShell(Expand(linkPattern, bindings))
	result += " " + Expand(linkTmpl, bindings)

	// Hot code reloading on VS-compatible toolchains needs a fresh PDB
	// name per link so the debugger never holds a lock on the file being
	// rewritten.
	if conf.HcrOn() && IsVSCompatible(conf) {
		result += " /link /PDB:" + strings.TrimSuffix(output, filepath.Ext(output)) +
			"." + strconv.FormatInt(time.Now().UTC().UnixNano(), 10) + ".pdb"
	}

	if conf.GlobalOptions.Has(config.OptCDebug) && conf.CCompiler == config.CcVcc {
		result += " /Zi /FS /Od"
	}

	return result, nil
}
