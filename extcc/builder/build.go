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

// Package builder orchestrates the external toolchain: it filters cached
// inputs through the footprint oracle, executes the synthesized compile
// commands in parallel, drives the linker, and emits the replayable build
// plan plus the optional script and mapping artifacts.
package builder

import (
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/toolchain"
)

// CompileEntry pairs a source path with the command that compiles it; the
// build plan records these.
type CompileEntry struct {
	CName string
	Cmd   string
}

// BuildResult is what one driver run produced: the compile commands that
// were (or would be) executed, every object participating in the link, and
// the final link command(s).
type BuildResult struct {
	CompileCmds []CompileEntry
	ObjFiles    []string
	LinkCmds    []string
}

// addFileExt appends ext unless the path already carries an extension.
func addFileExt(path string, ext string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + "." + ext
}

// linkObjFiles assembles the ordered object list for the linker: every
// external object first (in ExternalToLink order, most recently added
// first), then every generated object
// in ToCompile order.  Cached units are linked like any other; only their
// compilation was skipped.
func linkObjFiles(conf *config.Config) []string {
	d := toolchain.Get(conf.CCompiler)
	noAbs := conf.GlobalOptions.Has(config.OptGenScript)

	var objs []string
	for _, ext := range conf.ExternalToLink {
		obj := addFileExt(ext, d.ObjExt)
		if noAbs {
			obj = filepath.Base(obj)
		} else if !filepath.IsAbs(obj) {
			obj = filepath.Join(conf.NimcacheDir, obj)
		}
		objs = append(objs, obj)
	}

	for i := range conf.ToCompile {
		obj := toolchain.ObjFilePath(conf, &conf.ToCompile[i])
		if noAbs {
			obj = filepath.Base(obj)
		}
		objs = append(objs, obj)
	}

	return objs
}

func quoteObjFiles(objs []string) string {
	quoted := ""
	for _, obj := range objs {
		if quoted != "" {
			quoted += " "
		}
		quoted += shellquote.Join(obj)
	}

	return quoted
}

// compileCmds synthesizes one compile command per non-cached translation
// unit, in ToCompile order.  The last unit is the main module; hot code
// reload compiles every other unit for a shared library.  prettyCmds holds
// the short per-file status lines.
func compileCmds(conf *config.Config) ([]CompileEntry, []string, error) {
	var entries []CompileEntry
	var prettyCmds []string

	mainIdx := len(conf.ToCompile) - 1
	for i := range conf.ToCompile {
		cfile := &conf.ToCompile[i]
		if cfile.Flags.Has(config.CfileCached) {
			continue
		}

		cmd, err := toolchain.CompileCFileCmd(conf, cfile, i == mainIdx, true)
		if err != nil {
			return nil, nil, err
		}

		entries = append(entries, CompileEntry{CName: cfile.CName, Cmd: cmd})
		prettyCmds = append(prettyCmds,
			"CC: "+filepath.Base(cfile.CName))
	}

	return entries, prettyCmds, nil
}

// CallCCompiler runs the full external build: compile what the oracle did
// not mark cached, then link (unless linking is disabled).  With
// compile_only set, commands are synthesized but only a generated script
// ever sees the link command.
func CallCCompiler(conf *config.Config) (*BuildResult, error) {
	res := &BuildResult{}

	if len(conf.ToCompile) == 0 && len(conf.ExternalToLink) == 0 {
		return res, nil
	}

	entries, prettyCmds, err := compileCmds(conf)
	if err != nil {
		return nil, err
	}
	res.CompileCmds = entries

	if !conf.GlobalOptions.Has(config.OptCompileOnly) {
		cmds := make([]string, len(entries))
		for i, e := range entries {
			cmds[i] = e.Cmd
		}
		if err := ExecCmdsInParallel(conf, cmds, prettyCmds); err != nil {
			return nil, err
		}
	}

	res.ObjFiles = linkObjFiles(conf)

	linkCmds, err := CallLinker(conf, quoteObjFiles(res.ObjFiles))
	if err != nil {
		return nil, err
	}
	res.LinkCmds = linkCmds

	if conf.GlobalOptions.Has(config.OptGenScript) {
		if err := GenerateScript(conf, res); err != nil {
			return nil, err
		}
	}

	return res, nil
}
