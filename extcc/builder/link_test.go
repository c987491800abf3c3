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

package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/util"
)

func TestSplitLinkCmd(t *testing.T) {
	cases := []struct {
		cmd  string
		exe  string
		args string
	}{
		{"gcc -o m m.o", "gcc", "-o m m.o"},
		{"\"c:\\tools\\gcc.exe\" -o m m.o", "\"c:\\tools\\gcc.exe\"",
			"-o m m.o"},
		{"'my gcc' -o m m.o", "'my gcc'", "-o m m.o"},
		{"gcc", "gcc", ""},
	}

	for _, c := range cases {
		exe, args := splitLinkCmd(c.cmd)
		if exe != c.exe || args != c.args {
			t.Fatalf("splitLinkCmd(%q) = %q, %q; want %q, %q",
				c.cmd, exe, args, c.exe, c.args)
		}
	}
}

func TestWriteLinkerArgsFileTranslation(t *testing.T) {
	conf := testConf(t)
	conf.CCompiler = config.CcGcc

	argsFile, err := writeLinkerArgsFile(conf, "-o out obj\\a.o obj\\b.o")
	if err != nil {
		t.Fatalf("writeLinkerArgsFile failed: %s", err.Error())
	}
	defer os.Remove(argsFile)

	if filepath.Base(argsFile) != "m_linkerArgs.txt" {
		t.Fatalf("response file name: %s", argsFile)
	}

	buf, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "-o out obj/a.o obj/b.o" {
		t.Fatalf("GCC response files need forward slashes: %q", buf)
	}
}

func TestWriteLinkerArgsFileVccKeepsBackslashes(t *testing.T) {
	conf := testConf(t)
	conf.CCompiler = config.CcVcc

	argsFile, err := writeLinkerArgsFile(conf, "obj\\a.obj")
	if err != nil {
		t.Fatalf("writeLinkerArgsFile failed: %s", err.Error())
	}
	defer os.Remove(argsFile)

	buf, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "obj\\a.obj" {
		t.Fatalf("VCC response files keep backslashes: %q", buf)
	}
}

// An oversized link command is routed through a response file, which is
// removed afterwards.
func TestExecLinkCmdResponseFile(t *testing.T) {
	skipWithoutShellTools(t)

	conf := testConf(t)
	conf.NumProcessors = 1

	var sb strings.Builder
	sb.WriteString("true")
	for sb.Len() < maxCmdLen(conf)+1000 {
		sb.WriteString(" obj\\some\\file.o")
	}

	if err := execLinkCmd(conf, sb.String()); err != nil {
		t.Fatalf("execLinkCmd failed: %s", err.Error())
	}

	if util.NodeExist(responseFilePath(conf)) {
		t.Fatal("response file must be deleted after the link")
	}
}

func TestExecLinkCmdShort(t *testing.T) {
	skipWithoutShellTools(t)

	conf := testConf(t)
	if err := execLinkCmd(conf, "true"); err != nil {
		t.Fatalf("execLinkCmd failed: %s", err.Error())
	}
	if util.NodeExist(responseFilePath(conf)) {
		t.Fatal("short commands must not produce a response file")
	}
}

func TestMaxCmdLen(t *testing.T) {
	conf := testConf(t)

	conf.HostOS = platform.OsLinux
	if maxCmdLen(conf) != 32000 {
		t.Fatal("POSIX limit should be 32000")
	}

	conf.HostOS = platform.OsWindows
	if maxCmdLen(conf) != 8000 {
		t.Fatal("Windows limit should be 8000")
	}
}

func TestHcrOutputPath(t *testing.T) {
	conf := testConf(t)
	conf.TargetOS = platform.OsLinux

	cf := config.CFile{NimName: "mymod", CName: "/t/mymod.nim.c"}
	if got := hcrOutputPath(conf, &cf, false); filepath.Base(got) !=
		"libmymod.so" {

		t.Fatalf("HCR module artifact: %s", got)
	}

	conf.TargetOS = platform.OsWindows
	if got := hcrOutputPath(conf, &cf, false); filepath.Base(got) !=
		"mymod.dll" {

		t.Fatalf("HCR module artifact on Windows: %s", got)
	}

	conf.TargetOS = platform.OsLinux
	got := hcrOutputPath(conf, &cf, true)
	if filepath.Dir(got) != conf.NimcacheDir {
		t.Fatalf("HCR main binary must live in the nimcache: %s", got)
	}
	if filepath.Base(got) != "m" {
		t.Fatalf("HCR main binary name: %s", got)
	}
}

func TestRemoveStalePdbs(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "m.exe")

	stale1 := filepath.Join(dir, "m.123.pdb")
	stale2 := filepath.Join(dir, "m.456.pdb")
	keep := filepath.Join(dir, "other.123.pdb")
	for _, f := range []string{stale1, stale2, keep} {
		if err := os.WriteFile(f, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	removeStalePdbs(output)

	if util.NodeExist(stale1) || util.NodeExist(stale2) {
		t.Fatal("stale PDBs were not removed")
	}
	if util.NodeNotExist(keep) {
		t.Fatal("unrelated PDB was removed")
	}
}

// no_linking skips the link phase entirely.
func TestCallLinkerNoLinking(t *testing.T) {
	conf := testConf(t)
	conf.GlobalOptions |= config.OptNoLinking

	cmds, err := CallLinker(conf, "a.o")
	if err != nil {
		t.Fatalf("CallLinker failed: %s", err.Error())
	}
	if cmds != nil {
		t.Fatal("no_linking must not produce link commands")
	}
}

// compile_only still synthesizes the command for script generation, but
// does not execute it.
func TestCallLinkerCompileOnly(t *testing.T) {
	conf := testConf(t)
	conf.GlobalOptions |= config.OptCompileOnly
	conf.OutFile = filepath.Join(conf.ProjectPath, "m")

	cmds, err := CallLinker(conf, "a.o")
	if err != nil {
		t.Fatalf("CallLinker failed: %s", err.Error())
	}
	if len(cmds) != 1 || !strings.Contains(cmds[0], "a.o") {
		t.Fatalf("link command not synthesized: %v", cmds)
	}
	if util.NodeExist(conf.OutFile) {
		t.Fatal("compile_only must not link")
	}
}
