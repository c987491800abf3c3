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
	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/util"
)

// echoCmd applies the verbosity policy before a command runs: at level 2
// and above (or with list_cmd) the full command is echoed; at level 1 only
// the short pretty line is shown; level 0 stays silent.
func echoCmd(conf *config.Config, cmd string, pretty string) {
	if conf.Verbosity >= util.VERBOSITY_DEFAULT ||
		conf.GlobalOptions.Has(config.OptListCmd) {

		util.StatusMessage(util.VERBOSITY_SILENT, "%s\n", cmd)
	} else if conf.Verbosity == util.VERBOSITY_QUIET && pretty != "" {
		util.StatusMessage(util.VERBOSITY_SILENT, "%s\n", pretty)
	}
}

// reportCmdFailure reproduces a failed child's combined output verbatim,
// naming the command that produced it.
func reportCmdFailure(cmd string, output []byte, err error) {
	code := util.ExitStatus(err)
	if code >= 0 {
		util.ErrorMessage(util.VERBOSITY_QUIET,
			"Error: execution of an external compiler program failed "+
				"with exit code %d:\n%s\n%s", code, cmd, string(output))
	} else {
		util.ErrorMessage(util.VERBOSITY_QUIET,
			"Error: could not start external compiler program:\n%s\n%s\n",
			cmd, err.Error())
	}
}

// ExecCmdsInParallel runs a list of self-contained command strings with
// bounded concurrency.  prettyCmds, when non-nil, supplies the short
// status line per index.  Concurrency is capped by Config.NumProcessors
// (auto-detected when zero); the single-processor case degrades to a
// sequential run that stops at the first failure.  In the parallel case a
// failure stops new commands from being spawned, commands already running
// drain, and the first error is returned.
func ExecCmdsInParallel(conf *config.Config, cmds []string,
	prettyCmds []string) error {

	if len(cmds) == 0 {
		return nil
	}

	pretty := func(idx int) string {
		if prettyCmds == nil || idx >= len(prettyCmds) {
			return ""
		}
		return prettyCmds[idx]
	}

	numThreads := conf.NumProcessors
	if numThreads <= 0 {
		numThreads = util.NumProcessors()
	}
	if numThreads > len(cmds) {
		numThreads = len(cmds)
	}

	if numThreads <= 1 {
		for i := range cmds {
			if err := execCmd(conf, cmds[i], pretty(i)); err != nil {
				return err
			}
		}
		return nil
	}

	return util.BatchIndices(0, len(cmds), numThreads,
		func(idx int, thread int) error {
			return execCmd(conf, cmds[idx], pretty(idx))
		})
}

// execCmd runs one command, applying the echo policy and reporting any
// failure through the diagnostic surface.
func execCmd(conf *config.Config, cmd string, pretty string) error {
	echoCmd(conf, cmd, pretty)

	output, err := util.RunCommandLine(cmd)
	if err != nil {
		reportCmdFailure(cmd, output, err)
		return util.FmtCcError("external program failed: %s", cmd)
	}

	return nil
}
