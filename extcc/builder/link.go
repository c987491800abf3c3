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

	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/extcc/toolchain"
	"github.com/extcc/extcc/util"
)

// maxCmdLen is the conservative command-line length limit of the host:
// CreateProcess caps out near 8k characters, POSIX systems allow far more.
func maxCmdLen(conf *config.Config) int {
	if platform.IsWindowsLike(conf.HostOS) {
		return 8000
	}
	return 32000
}

func responseFilePath(conf *config.Config) string {
	return filepath.Join(conf.ProjectPath,
		conf.ProjectName+"_linkerArgs.txt")
}

// splitLinkCmd separates the (possibly quoted) leading executable of an
// assembled link command from its argument tail.
func splitLinkCmd(cmd string) (string, string) {
	if len(cmd) > 0 && (cmd[0] == '"' || cmd[0] == '\'') {
		quote := cmd[0]
		if end := strings.IndexByte(cmd[1:], quote); end >= 0 {
			return cmd[:end+2], strings.TrimLeft(cmd[end+2:], " ")
		}
	}
	if sp := strings.IndexByte(cmd, ' '); sp >= 0 {
		return cmd[:sp], cmd[sp+1:]
	}

	return cmd, ""
}

func usesGnuLinker(kind config.Compiler) bool {
	switch kind {
	case config.CcGcc, config.CcSwitchGcc, config.CcLlvmGcc, config.CcClang:
		return true
	default:
		return false
	}
}

// writeLinkerArgsFile persists the argument tail of an oversized link
// command.  GCC and Clang insist on forward slashes inside response files.
func writeLinkerArgsFile(conf *config.Config, args string) (string, error) {
	if usesGnuLinker(conf.CCompiler) {
		args = strings.ReplaceAll(args, "\\", "/")
	}

	argsFile := responseFilePath(conf)
	if err := os.WriteFile(argsFile, []byte(args), 0644); err != nil {
		return "", util.FmtCcError("unable to write linker args file %s: %s",
			argsFile, err.Error())
	}

	return argsFile, nil
}

// execLinkCmd runs one link command, falling back to a response file when
// the command line exceeds the host's limit: the argument tail is written
// to <project>_linkerArgs.txt and the linker is invoked as "exe @file".
func execLinkCmd(conf *config.Config, linkCmd string) error {
	if len(linkCmd) <= maxCmdLen(conf) {
		return execCmd(conf, linkCmd, "")
	}

	exe, args := splitLinkCmd(linkCmd)

	argsFile, err := writeLinkerArgsFile(conf, args)
	if err != nil {
		return err
	}
	defer os.Remove(argsFile)

	log.Debugf("link command length %d exceeds limit; using %s",
		len(linkCmd), argsFile)

	return execCmd(conf, exe+" @"+argsFile, "")
}

// hcrOutputPath maps a translation unit onto its hot-code-reload artifact:
// a shared library named after the module, except for the main unit which
// becomes the executable, all inside the nimcache.
func hcrOutputPath(conf *config.Config, cfile *config.CFile,
	isMain bool) string {

	if isMain {
		return filepath.Join(conf.NimcacheDir,
			filepath.Base(conf.AbsOutFile()))
	}

	dll := toolchain.Expand1(platform.OS[conf.TargetOS].DllFrmt,
		cfile.NimName)
	return filepath.Join(conf.NimcacheDir, dll)
}

// removeStalePdbs clears out timestamped .pdb files left behind by earlier
// hot-code-reload links of the same artifact.  Best effort only.
func removeStalePdbs(output string) {
	pattern := strings.TrimSuffix(output, filepath.Ext(output)) + ".*.pdb"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}

// hcrLinkTargets synthesizes one link command per non-cached unit.  The
// returned slices are parallel: outputs[i] is the artifact cmds[i]
// produces.
func hcrLinkTargets(conf *config.Config) ([]string, []string, string, error) {
	var cmds, outputs []string
	mainOutput := ""

	mainIdx := len(conf.ToCompile) - 1
	for i := range conf.ToCompile {
		cfile := &conf.ToCompile[i]
		if cfile.Flags.Has(config.CfileCached) {
			continue
		}

		isMain := i == mainIdx
		output := hcrOutputPath(conf, cfile, isMain)
		if isMain {
			mainOutput = output
		}

		if toolchain.IsVSCompatible(conf) {
			removeStalePdbs(output)
		}

		objfile := toolchain.ObjFilePath(conf, cfile)
		cmd, err := toolchain.LinkCmd(conf, output,
			shellquote.Join(objfile), !isMain)
		if err != nil {
			return nil, nil, "", err
		}

		cmds = append(cmds, cmd)
		outputs = append(outputs, output)
	}

	return cmds, outputs, mainOutput, nil
}

// CallLinker drives the link phase.  Exactly one of the static-library,
// hot-code-reload, or single-link modes is active; no_linking skips the
// phase entirely.  The returned command(s) are what got executed (or what
// a generated script should contain).
func CallLinker(conf *config.Config, objfiles string) ([]string, error) {
	if conf.GlobalOptions.Has(config.OptNoLinking) {
		return nil, nil
	}

	execute := !conf.GlobalOptions.Has(config.OptCompileOnly)

	if conf.GlobalOptions.Has(config.OptGenStaticLib) {
		cmd, err := toolchain.LinkCmd(conf, "", objfiles, false)
		if err != nil {
			return nil, err
		}
		if execute {
			if err := execLinkCmd(conf, cmd); err != nil {
				return nil, err
			}
		}
		return []string{cmd}, nil
	}

	if conf.HcrOn() {
		cmds, outputs, mainBin, err := hcrLinkTargets(conf)
		if err != nil {
			return nil, err
		}
		if execute {
			for i, cmd := range cmds {
				util.StatusMessage(util.VERBOSITY_VERBOSE, "Linking %s\n",
					outputs[i])
				if err := execLinkCmd(conf, cmd); err != nil {
					return nil, err
				}
			}

			// The freshly linked main binary lives in the nimcache; install
			// it at the intended output path with its permissions intact.
			if mainBin != "" {
				if err := util.CopyFile(mainBin, conf.AbsOutFile()); err != nil {
					return nil, err
				}
			}
		}
		return cmds, nil
	}

	output := conf.AbsOutFile()
	isDll := conf.GlobalOptions.Has(config.OptGenDynLib)

	cmd, err := toolchain.LinkCmd(conf, output, objfiles, isDll)
	if err != nil {
		return nil, err
	}
	if execute {
		util.StatusMessage(util.VERBOSITY_VERBOSE, "Linking %s\n", output)
		if err := execLinkCmd(conf, cmd); err != nil {
			return nil, err
		}
	}

	return []string{cmd}, nil
}
