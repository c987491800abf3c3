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

package toolchain_test

import (
	"strings"
	"testing"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/extcc/toolchain"
)

// The full binding set command synthesis provides; every descriptor
// template must be expandable with it.
func stdBindings() map[string]string {
	return map[string]string{
		"file":        "x.c",
		"objfile":     "x.o",
		"options":     "",
		"include":     "",
		"dfile":       "x.d",
		"nim":         "",
		"lib":         "",
		"vccplatform": "",
		"buildgui":    "",
		"builddll":    "",
		"exefile":     "x",
		"objfiles":    "x.o",
		"mapfile":     "x.map",
		"libfile":     "x.a",
		"asmfile":     "x.asm",
	}
}

func expandOk(t *testing.T, name string, tmpl string) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("template of %s not expandable: %v", name, r)
		}
	}()

	toolchain.Expand(tmpl, stdBindings())
}

func TestDescriptorTotality(t *testing.T) {
	for i := 1; i <= config.NumCompilers; i++ {
		kind := config.Compiler(i)

		d := toolchain.Get(kind)
		if d.Name == "" {
			t.Fatalf("kind %d has no name", i)
		}
		if d.ObjExt == "" {
			t.Fatalf("%s has no object extension", d.Name)
		}

		expandOk(t, d.Name, d.CompileTmpl)
		expandOk(t, d.Name, d.LinkTmpl)
		if d.BuildLib != "" {
			expandOk(t, d.Name, d.BuildLib)
		}
		if d.ProduceAsm != "" {
			expandOk(t, d.Name, d.ProduceAsm)
		}
	}
}

func TestGetSentinelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("descriptor lookup of the sentinel did not panic")
		}
	}()

	toolchain.Get(config.CcNone)
}

func TestKindFromNameRoundTrip(t *testing.T) {
	for i := 1; i <= config.NumCompilers; i++ {
		kind := config.Compiler(i)
		name := toolchain.Get(kind).Name

		if got := toolchain.KindFromName(name); got != kind {
			t.Fatalf("round trip failed for %s: got %d, want %d", name,
				got, kind)
		}
	}
}

func TestKindFromNameStyleInsensitive(t *testing.T) {
	cases := map[string]config.Compiler{
		"Clang_CL":   config.CcClangCl,
		"clangcl":    config.CcClangCl,
		"CLANG_CL":   config.CcClangCl,
		"GCC":        config.CcGcc,
		"llvmGcc":    config.CcLlvmGcc,
		"switch_gcc": config.CcSwitchGcc,
		"nope":       config.CcNone,
		"":           config.CcNone,
	}

	for name, want := range cases {
		if got := toolchain.KindFromName(name); got != want {
			t.Fatalf("KindFromName(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestDerivedDescriptors(t *testing.T) {
	gcc := toolchain.Get(config.CcGcc)
	llvm := toolchain.Get(config.CcLlvmGcc)
	clang := toolchain.Get(config.CcClang)

	if llvm.CompileTmpl != gcc.CompileTmpl {
		t.Fatal("llvm_gcc should inherit the gcc compile template")
	}
	if clang.CompilerExe != "clang" || clang.CppCompiler != "clang++" {
		t.Fatal("clang executables wrong")
	}
	if clang.BuildLib != llvm.BuildLib {
		t.Fatal("clang should inherit the llvm_gcc archiver")
	}

	vcc := toolchain.Get(config.CcVcc)
	clangCl := toolchain.Get(config.CcClangCl)
	if clangCl.CompileTmpl != vcc.CompileTmpl {
		t.Fatal("clang_cl should inherit the vcc compile template")
	}
	if clangCl.ObjExt != "obj" {
		t.Fatal("clang_cl should produce .obj files")
	}
}

func TestIsVSCompatible(t *testing.T) {
	conf := config.New()

	conf.CCompiler = config.CcVcc
	if !toolchain.IsVSCompatible(conf) {
		t.Fatal("vcc must be VS compatible")
	}

	conf.CCompiler = config.CcClangCl
	if !toolchain.IsVSCompatible(conf) {
		t.Fatal("clang_cl must be VS compatible")
	}

	conf.CCompiler = config.CcGcc
	if toolchain.IsVSCompatible(conf) {
		t.Fatal("gcc must not be VS compatible")
	}

	conf.CCompiler = config.CcIcl
	conf.HostOS = platform.OsLinux
	if toolchain.IsVSCompatible(conf) {
		t.Fatal("icl is only VS compatible on Windows hosts")
	}
	conf.HostOS = platform.OsWindows
	if !toolchain.IsVSCompatible(conf) {
		t.Fatal("icl on a Windows host must be VS compatible")
	}
}

func TestSetCC(t *testing.T) {
	conf := config.New()

	if err := toolchain.SetCC(conf, "ClangCL"); err != nil {
		t.Fatalf("SetCC failed: %s", err.Error())
	}
	if conf.CCompiler != config.CcClangCl {
		t.Fatal("wrong compiler selected")
	}
	if !conf.IsDefined("clang_cl") {
		t.Fatal("active toolchain symbol not defined")
	}
	if conf.IsDefined("gcc") {
		t.Fatal("inactive toolchain symbol still defined")
	}

	if err := toolchain.SetCC(conf, "gcc"); err != nil {
		t.Fatalf("SetCC failed: %s", err.Error())
	}
	if conf.IsDefined("clang_cl") {
		t.Fatal("previous toolchain symbol not undefined")
	}
	if !conf.IsDefined("gcc") {
		t.Fatal("gcc symbol not defined")
	}
}

func TestSetCCUnknown(t *testing.T) {
	conf := config.New()

	err := toolchain.SetCC(conf, "borland2000")
	if err == nil {
		t.Fatal("expected an error for an unknown compiler")
	}

	// The diagnostic must list every known toolchain.
	for _, name := range toolchain.ListNames() {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("candidate list is missing %s: %s", name, err.Error())
		}
	}
}
