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

// Package config holds the shared configuration bundle the host threads
// through the driver.  The driver has exclusive access to a Config for the
// duration of a build; there is no internal locking.
package config

import (
	"path/filepath"
	"strings"

	"github.com/extcc/extcc/extcc/platform"
)

// Compiler identifies one back-end toolchain variant.  The descriptor
// catalog in the toolchain package is indexed by this type.
type Compiler int

const (
	CcNone Compiler = iota
	CcGcc
	CcSwitchGcc
	CcLlvmGcc
	CcClang
	CcLcc
	CcBcc
	CcDmc
	CcWcc
	CcVcc
	CcTcc
	CcPcc
	CcUcc
	CcIcl
	CcIcc
	CcClangCl
)

// NumCompilers is the number of real toolchains (the sentinel excluded).
const NumCompilers = int(CcClangCl)

// Backend is the command mode the front end ran under.  Only the
// C-producing backends feed the external toolchain driver.
type Backend int

const (
	BackendNone Backend = iota
	BackendC
	BackendCpp
	BackendObjC
	BackendJs
	BackendLlvm
)

// CompilesC reports whether this backend produces input for an external C
// toolchain.  The footprint oracle is a no-op for the others.
func (b Backend) CompilesC() bool {
	return b != BackendJs
}

type GlobalOptions uint32

const (
	OptCompileOnly GlobalOptions = 1 << iota
	OptGenScript
	OptGenMapping
	OptGenStaticLib
	OptGenDynLib
	OptGenGuiApp
	OptListCmd
	OptNoLinking
	OptForceFullMake
	OptProduceAsm
	OptCDebug
	OptMixedMode
	OptRun
	OptHotCodeReloading
)

func (o GlobalOptions) Has(flag GlobalOptions) bool {
	return o&flag != 0
}

type Options uint32

const (
	OptOptimizeSpeed Options = 1 << iota
	OptOptimizeSize
)

func (o Options) Has(flag Options) bool {
	return o&flag != 0
}

type CFileFlags uint8

const (
	// The file was not produced by this front-end run; the footprint
	// oracle decides whether it needs recompilation.
	CfileExternal CFileFlags = 1 << iota
	// Set by the oracle: the object on disk is up to date and no compile
	// command is synthesized.
	CfileCached
)

func (f CFileFlags) Has(flag CFileFlags) bool {
	return f&flag != 0
}

// CFile is one generated translation unit plus its per-file state.
type CFile struct {
	// Logical module name; keys the per-module config variables
	// ("<name>.debug", "<name>.speed", ...).
	NimName string
	// Absolute path of the generated source.
	CName string
	// Object path; empty means "derive from CName".
	Obj string
	Flags CFileFlags
}

// Config is the process-wide configuration bundle.  It is populated by the
// host (command line, front end) and mutated by the driver: option
// accumulators grow, and ToCompile entries get their Cached flag set.
type Config struct {
	CCompiler Compiler
	Backend   Backend

	GlobalOptions GlobalOptions
	Options       Options

	TargetOS  platform.OsId
	TargetCPU platform.CpuId
	HostOS    platform.OsId

	Verbosity     int
	NumProcessors int

	// Option accumulators.  The *Cmd lists hold options that originated on
	// the command line; they are folded in with substring de-duplication.
	CompileOptions    string
	LinkOptions       string
	CompileOptionsCmd []string
	LinkOptionsCmd    []string

	// Per-file compile option overrides, keyed by full source path.
	CFileSpecificOptions map[string]string

	// Free-form configuration variables ("gcc.exe", "m.speed", ...).
	ConfigVars map[string]string

	// Conditional-compilation symbols.  The driver keeps exactly one
	// toolchain name defined here.
	Symbols map[string]bool

	LibPath       string
	ProjectPath   string
	ProjectName   string
	NimcacheDir   string
	PrefixDir     string
	CCompilerPath string
	OutFile       string
	OutDir        string

	// The user's original invocation, recorded in the build plan.
	CommandLine string

	// Emit the run-support block (cmdline, depfiles, nimexe) in the plan
	// even when OptRun is not set.
	BetterRun bool

	ToCompile      []CFile
	ExternalToLink []string

	CLibs       []string
	CLinkedLibs []string
	CIncludes   []string

	// Absolute paths of every file the front end consumed; hashed into the
	// plan's depfiles array.
	ModuleFiles []string
}

func New() *Config {
	return &Config{
		Backend:              BackendC,
		TargetOS:             platform.HostOs(),
		TargetCPU:            platform.HostCpu(),
		HostOS:               platform.HostOs(),
		CFileSpecificOptions: map[string]string{},
		ConfigVars:           map[string]string{},
		Symbols:              map[string]bool{},
	}
}

func (c *Config) HcrOn() bool {
	return c.GlobalOptions.Has(OptHotCodeReloading)
}

// AddOpt appends an option fragment to an accumulator, inserting a single
// separating space unless the accumulator already ends in one.
func AddOpt(dest *string, src string) {
	if len(*dest) == 0 || (*dest)[len(*dest)-1] != ' ' {
		*dest += " "
	}
	*dest += src
}

// AddCompileOption accumulates a global compile option.  De-duplication is
// by substring search, matching how existing configurations rely on it;
// "--flag" and "--flagged" interfere on purpose.
func (c *Config) AddCompileOption(option string) {
	if strings.Index(c.CompileOptions, option) < 0 {
		AddOpt(&c.CompileOptions, option)
	}
}

// AddLinkOption accumulates a global link option, with the same substring
// de-duplication as AddCompileOption.
func (c *Config) AddLinkOption(option string) {
	if strings.Index(c.LinkOptions, option) < 0 {
		AddOpt(&c.LinkOptions, option)
	}
}

// AddLocalCompileOption records a compile option applying to a single
// source file only.
func (c *Config) AddLocalCompileOption(option string, fullPath string) {
	current := c.CFileSpecificOptions[fullPath]
	if strings.Index(current, option) < 0 {
		AddOpt(&current, option)
		c.CFileSpecificOptions[fullPath] = current
	}
}

// AddFileToCompile appends a generated translation unit.
func (c *Config) AddFileToCompile(cf CFile) {
	c.ToCompile = append(c.ToCompile, cf)
}

// AddExternalToLink prepends a precompiled object to the link set.  New
// externals go to position 0, so the final link order is the reverse of
// insertion order.
func (c *Config) AddExternalToLink(obj string) {
	c.ExternalToLink = append([]string{obj}, c.ExternalToLink...)
}

func (c *Config) ExistsConfigVar(key string) bool {
	_, ok := c.ConfigVars[key]
	return ok
}

func (c *Config) GetConfigVar(key string) string {
	return c.ConfigVars[key]
}

func (c *Config) SetConfigVar(key string, val string) {
	c.ConfigVars[key] = val
}

func (c *Config) DefineSymbol(name string) {
	c.Symbols[name] = true
}

func (c *Config) UndefSymbol(name string) {
	delete(c.Symbols, name)
}

func (c *Config) IsDefined(name string) bool {
	return c.Symbols[name]
}

// AbsOutFile resolves the intended output binary: the explicit out file if
// one was given (made absolute against the out dir / project path),
// otherwise the project name with the target's executable extension.
func (c *Config) AbsOutFile() string {
	name := c.OutFile
	if name == "" {
		name = c.ProjectName
		if ext := platform.OS[c.TargetOS].ExeExt; ext != "" {
			name += "." + ext
		}
	}
	if filepath.IsAbs(name) {
		return name
	}

	dir := c.OutDir
	if dir == "" {
		dir = c.ProjectPath
	}
	return filepath.Join(dir, name)
}
