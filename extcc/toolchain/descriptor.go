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

// Package toolchain knows how to talk to every supported back-end C
// toolchain: the descriptor catalog, the command templates, and the
// synthesis of concrete compile and link invocations from a Config.
package toolchain

import (
	"strings"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/util"
)

type Props uint16

const (
	HasSwitchRange Props = 1 << iota
	HasComputedGoto
	HasCpp
	HasAssume
	HasGcGuard
	HasGnuAsm
	HasDeclspec
	HasAttribute
)

func (p Props) Has(flag Props) bool {
	return p&flag != 0
}

// Descriptor is the immutable record describing one toolchain: executable
// names, command templates, and capability flags.  Placeholder vocabulary
// for the templates: $file $objfile $options $include $dfile $nim $lib
// $vccplatform $buildgui $builddll $exefile $objfiles $mapfile $libfile
// $asmfile, plus $1 in LinkLibCmd.
type Descriptor struct {
	Name string

	ObjExt string

	OptSpeed string
	OptSize  string
	Debug    string

	CompilerExe string
	CppCompiler string
	LinkerExe   string

	CompileTmpl string
	LinkTmpl    string

	BuildGui string
	BuildDll string
	BuildLib string

	IncludeCmd string
	LinkDirCmd string
	LinkLibCmd string

	Pic string

	AsmStmtFrmt   string
	StructStmtFmt string
	ProduceAsm    string

	Props Props
}

var cc [config.NumCompilers + 1]Descriptor

// The catalog expresses some entries as derivations of others; they are
// materialized here once so lookups stay O(1).
func init() {
	gcc := Descriptor{
		Name:          "gcc",
		ObjExt:        "o",
		OptSpeed:      "-O3 -fno-ident",
		OptSize:       "-Os -fno-ident",
		Debug:         "",
		CompilerExe:   "gcc",
		CppCompiler:   "g++",
		LinkerExe:     "",
		CompileTmpl:   "-c $options $include -o $objfile $file",
		LinkTmpl:      "$buildgui $builddll -o $exefile $objfiles $options",
		BuildGui:      "-mwindows",
		BuildDll:      "-shared",
		BuildLib:      "ar rcs $libfile $objfiles",
		IncludeCmd:    " -I",
		LinkDirCmd:    " -L",
		LinkLibCmd:    " -l$1",
		Pic:           "-fPIC",
		AsmStmtFrmt:   "__asm__($1);",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "-fverbose-asm -S -o $asmfile",
		Props: HasSwitchRange | HasComputedGoto | HasCpp | HasGcGuard |
			HasGnuAsm | HasAttribute,
	}
	cc[config.CcGcc] = gcc

	switchGcc := gcc
	switchGcc.Name = "switch_gcc"
	switchGcc.CompilerExe = "aarch64-none-elf-gcc"
	switchGcc.CppCompiler = "aarch64-none-elf-g++"
	switchGcc.LinkerExe = "aarch64-none-elf-gcc"
	switchGcc.BuildLib = "aarch64-none-elf-gcc-ar rcs $libfile $objfiles"
	switchGcc.LinkTmpl =
		"$buildgui $builddll -Wl,-Map,$mapfile -o $exefile $objfiles $options"
	cc[config.CcSwitchGcc] = switchGcc

	llvmGcc := gcc
	llvmGcc.Name = "llvm_gcc"
	llvmGcc.CompilerExe = "llvm-gcc"
	llvmGcc.CppCompiler = "llvm-g++"
	llvmGcc.BuildLib = "llvm-ar rcs $libfile $objfiles"
	cc[config.CcLlvmGcc] = llvmGcc

	clang := llvmGcc
	clang.Name = "clang"
	clang.CompilerExe = "clang"
	clang.CppCompiler = "clang++"
	cc[config.CcClang] = clang

	vcc := Descriptor{
		Name:          "vcc",
		ObjExt:        "obj",
		OptSpeed:      "/Ogityb2",
		OptSize:       "/O1",
		Debug:         "/RTC1 /Z7",
		CompilerExe:   "cl",
		CppCompiler:   "cl",
		LinkerExe:     "cl",
		CompileTmpl:   "/c$vccplatform $options $include /nologo /Fo$objfile $file",
		LinkTmpl:      "$builddll$vccplatform /Fe$exefile $objfiles $buildgui $options /nologo",
		BuildGui:      "/SUBSYSTEM:WINDOWS user32.lib",
		BuildDll:      "/LD",
		BuildLib:      "lib /OUT:$libfile $objfiles",
		IncludeCmd:    " /I",
		LinkDirCmd:    " /LIBPATH:",
		LinkLibCmd:    " $1.lib",
		Pic:           "",
		AsmStmtFrmt:   "__asm{$1}",
		StructStmtFmt: "$3 $1 $2",
		ProduceAsm:    "/Fa$asmfile",
		Props:         HasCpp | HasAssume | HasDeclspec,
	}
	cc[config.CcVcc] = vcc

	cc[config.CcLcc] = Descriptor{
		Name:          "lcc",
		ObjExt:        "obj",
		OptSpeed:      "-O -p6",
		OptSize:       "-O",
		Debug:         "-g5",
		CompilerExe:   "lcc",
		CppCompiler:   "",
		LinkerExe:     "lcclnk",
		CompileTmpl:   "$options $include -Fo$objfile $file",
		LinkTmpl:      "$options $buildgui $builddll -O $exefile $objfiles",
		BuildGui:      "-subsystem windows",
		BuildDll:      "-dll",
		BuildLib:      "",
		IncludeCmd:    " -I",
		LinkDirCmd:    "",
		LinkLibCmd:    "",
		Pic:           "",
		AsmStmtFrmt:   "_asm{$1}",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "",
		Props:         0,
	}

	cc[config.CcBcc] = Descriptor{
		Name:          "bcc",
		ObjExt:        "obj",
		OptSpeed:      "-O3 -6",
		OptSize:       "-O1 -6",
		Debug:         "",
		CompilerExe:   "bcc32c",
		CppCompiler:   "cpp32c",
		LinkerExe:     "bcc32",
		CompileTmpl:   "-c $options $include -o$objfile $file",
		LinkTmpl:      "$options $buildgui $builddll -e$exefile $objfiles",
		BuildGui:      "-tW",
		BuildDll:      "-tWD",
		BuildLib:      "",
		IncludeCmd:    " -I",
		LinkDirCmd:    "",
		LinkLibCmd:    "",
		Pic:           "",
		AsmStmtFrmt:   "__asm{$1}",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "",
		Props:         HasSwitchRange | HasComputedGoto | HasCpp,
	}

	cc[config.CcDmc] = Descriptor{
		Name:          "dmc",
		ObjExt:        "obj",
		OptSpeed:      "-ff -o -6",
		OptSize:       "-ff -o -6",
		Debug:         "-g",
		CompilerExe:   "dmc",
		CppCompiler:   "",
		LinkerExe:     "",
		CompileTmpl:   "-c $options $include -o$objfile $file",
		LinkTmpl:      "$options $buildgui $builddll -o$exefile $objfiles",
		BuildGui:      "-L/exet:nt/su:windows",
		BuildDll:      "-WD",
		BuildLib:      "",
		IncludeCmd:    " -I",
		LinkDirCmd:    "",
		LinkLibCmd:    "",
		Pic:           "",
		AsmStmtFrmt:   "__asm{$1}",
		StructStmtFmt: "$3 $1 $2",
		ProduceAsm:    "",
		Props:         HasCpp,
	}

	cc[config.CcWcc] = Descriptor{
		Name:          "wcc",
		ObjExt:        "obj",
		OptSpeed:      "-ox -on -6 -d0 -fp6 -zW",
		OptSize:       "",
		Debug:         "-d2",
		CompilerExe:   "wcl386",
		CppCompiler:   "",
		LinkerExe:     "",
		CompileTmpl:   "-c $options $include -fo=$objfile $file",
		LinkTmpl:      "$options $buildgui $builddll -fe=$exefile $objfiles",
		BuildGui:      "-bw",
		BuildDll:      "-bd",
		BuildLib:      "",
		IncludeCmd:    " -i=",
		LinkDirCmd:    "",
		LinkLibCmd:    "",
		Pic:           "",
		AsmStmtFrmt:   "__asm{$1}",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "",
		Props:         HasCpp,
	}

	cc[config.CcTcc] = Descriptor{
		Name:          "tcc",
		ObjExt:        "o",
		OptSpeed:      "",
		OptSize:       "",
		Debug:         "-g",
		CompilerExe:   "tcc",
		CppCompiler:   "",
		LinkerExe:     "tcc",
		CompileTmpl:   "-c $options $include -o $objfile $file",
		LinkTmpl:      "-o $exefile $options $buildgui $builddll $objfiles",
		BuildGui:      "-Wl,-subsystem=gui",
		BuildDll:      "-shared",
		BuildLib:      "",
		IncludeCmd:    " -I",
		LinkDirCmd:    " -L",
		LinkLibCmd:    " -l$1",
		Pic:           "",
		AsmStmtFrmt:   "asm($1);",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "",
		Props:         HasSwitchRange | HasComputedGoto | HasGnuAsm,
	}

	cc[config.CcPcc] = Descriptor{
		Name:          "pcc",
		ObjExt:        "obj",
		OptSpeed:      "-Ox",
		OptSize:       "-Os",
		Debug:         "-Zi",
		CompilerExe:   "cc",
		CppCompiler:   "",
		LinkerExe:     "",
		CompileTmpl:   "-c $options $include -Fo$objfile $file",
		LinkTmpl:      "$options $buildgui $builddll -OUT:$exefile $objfiles",
		BuildGui:      "-SUBSYSTEM:WINDOWS",
		BuildDll:      "-DLL",
		BuildLib:      "",
		IncludeCmd:    " -I",
		LinkDirCmd:    "",
		LinkLibCmd:    "",
		Pic:           "",
		AsmStmtFrmt:   "__asm{$1}",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "",
		Props:         0,
	}

	cc[config.CcUcc] = Descriptor{
		Name:          "ucc",
		ObjExt:        "o",
		OptSpeed:      "-O3",
		OptSize:       "-O1",
		Debug:         "",
		CompilerExe:   "cc",
		CppCompiler:   "",
		LinkerExe:     "cc",
		CompileTmpl:   "-c $options $include -o $objfile $file",
		LinkTmpl:      "-o $exefile $buildgui $builddll $objfiles $options",
		BuildGui:      "",
		BuildDll:      "",
		BuildLib:      "",
		IncludeCmd:    " -I",
		LinkDirCmd:    " -L",
		LinkLibCmd:    " -l$1",
		Pic:           "",
		AsmStmtFrmt:   "__asm__($1);",
		StructStmtFmt: "$1 $3 $2 ",
		ProduceAsm:    "",
		Props:         0,
	}

	icl := vcc
	icl.Name = "icl"
	icl.CompilerExe = "icl"
	icl.CppCompiler = "icl"
	icl.LinkerExe = "icl"
	cc[config.CcIcl] = icl

	icc := gcc
	icc.Name = "icc"
	icc.CompilerExe = "icc"
	icc.CppCompiler = "icpc"
	icc.LinkerExe = "icc"
	cc[config.CcIcc] = icc

	clangCl := vcc
	clangCl.Name = "clang_cl"
	clangCl.CompilerExe = "clang-cl"
	clangCl.CppCompiler = "clang-cl"
	clangCl.LinkerExe = "clang-cl"
	cc[config.CcClangCl] = clangCl
}

// Get returns the descriptor for the given toolchain.  Looking up the
// sentinel is a programming error.
func Get(kind config.Compiler) *Descriptor {
	if kind == config.CcNone {
		panic("descriptor lookup with no compiler selected")
	}
	return &cc[kind]
}

// eqIdent compares two names ignoring letter case and underscores, so
// "clang_cl", "ClangCL" and "clangcl" are all the same toolchain.
func eqIdent(a string, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", ""))
	}
	return norm(a) == norm(b)
}

// KindFromName matches a toolchain by its catalog name, style-insensitively.
// It returns CcNone when nothing matches.
func KindFromName(name string) config.Compiler {
	for i := 1; i <= config.NumCompilers; i++ {
		if eqIdent(cc[i].Name, name) {
			return config.Compiler(i)
		}
	}

	return config.CcNone
}

// ListNames returns every catalog name, in kind order.
func ListNames() []string {
	names := make([]string, 0, config.NumCompilers)
	for i := 1; i <= config.NumCompilers; i++ {
		names = append(names, cc[i].Name)
	}

	return names
}

// IsVSCompatible reports whether the chosen toolchain speaks the Visual
// Studio command line dialect.  icl only does so when running on a
// Windows-family host.
func IsVSCompatible(conf *config.Config) bool {
	switch conf.CCompiler {
	case config.CcVcc, config.CcClangCl:
		return true
	case config.CcIcl:
		return platform.IsWindowsLike(conf.HostOS)
	default:
		return false
	}
}

// SetCC switches the active toolchain by textual name.  An unknown name is
// a user error; the diagnostic lists every known toolchain.  The
// conditional-compilation symbol table is updated so that exactly the
// active toolchain's name is defined.
func SetCC(conf *config.Config, name string) error {
	kind := KindFromName(name)
	if kind == config.CcNone {
		return util.FmtCcError("unknown C compiler: '%s'. Available options are: %s",
			name, strings.Join(ListNames(), ", "))
	}

	conf.CCompiler = kind
	for i := 1; i <= config.NumCompilers; i++ {
		conf.UndefSymbol(cc[i].Name)
	}
	conf.DefineSymbol(Get(kind).Name)

	return nil
}
